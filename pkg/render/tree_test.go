package render_test

import (
	"bytes"
	"testing"

	"github.com/foomo/menuserver/menu"
	"github.com/foomo/menuserver/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMenu() *menu.Menu {
	return menu.New(
		menu.NewNode("Main Page", "index.html"),
		menu.NewNode("Namespaces", "namespaces.html",
			menu.NewNode("Namespace List", "namespaces.html"),
			menu.NewNode("Namespace Members", "namespacemembers.html",
				menu.NewNode("a", "namespacemembers.html#index_a"),
			),
		),
		menu.NewNode("Files", "files.html",
			menu.NewNode("File List", "files.html"),
		),
	)
}

func TestTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Tree(&buf, testMenu()))
	assert.Equal(t, `├── Main Page  index.html
├── Namespaces  namespaces.html
│   ├── Namespace List  namespaces.html
│   └── Namespace Members  namespacemembers.html
│       └── a  namespacemembers.html#index_a
└── Files  files.html
    └── File List  files.html
7 nodes, 3 levels
`, buf.String())
}

func TestTreeOptions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Tree(&buf, testMenu(), render.WithURLs(false), render.WithMaxDepth(1)))
	assert.Equal(t, `├── Main Page
├── Namespaces
└── Files
7 nodes, 3 levels
`, buf.String())
}

func TestTreeDepthCut(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Tree(&buf, testMenu(), render.WithURLs(false), render.WithMaxDepth(2)))
	assert.Equal(t, `├── Main Page
├── Namespaces
│   ├── Namespace List
│   └── Namespace Members
└── Files
    └── File List
7 nodes, 3 levels
`, buf.String())
}

func TestStylesFor(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, render.IsTerminal(&buf))
	assert.Equal(t, "plain", render.StylesFor(&buf).Text.Render("plain"))
}

func TestReferenceTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Tree(&buf, menu.Reference()))
	assert.Contains(t, buf.String(), "87 nodes, 4 levels")
}
