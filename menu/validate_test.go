package menu_test

import (
	"testing"

	"github.com/foomo/menuserver/menu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReference(t *testing.T) {
	require.NoError(t, menu.Validate(menu.Reference()))
	require.NoError(t, menu.Validate(loadTestdata(t)))
}

func TestValidateEmptyRoot(t *testing.T) {
	require.Error(t, menu.Validate(nil))
	require.Error(t, menu.Validate(menu.New()))
	require.Error(t, menu.Validate(&menu.Menu{Children: []*menu.Node{}}))
}

func TestValidateEmptyChildrenAllowed(t *testing.T) {
	m := menu.New(&menu.Node{Text: "Files", URL: "files.html", Children: []*menu.Node{}})
	require.NoError(t, menu.Validate(m))
}

func TestValidateReportsAllViolations(t *testing.T) {
	m := menu.New(
		menu.NewNode("Main Page", "index.html"),
		menu.NewNode("", "modules.html"),
		menu.NewNode("Namespaces", "namespaces.html",
			menu.NewNode("Namespace List", ""),
			menu.NewNode("Namespace Members", "namespacemembers.php"),
			menu.NewNode("All", "namespacemembers.html#"),
		),
		nil,
	)
	err := menu.Validate(m)
	require.Error(t, err)

	violations := menu.ValidationErrors(err)
	require.Len(t, violations, 5)
	assert.Equal(t, "[1]", violations[0].Path)
	assert.Equal(t, "empty text", violations[0].Message)
	assert.Equal(t, "Namespaces/Namespace List", violations[1].Path)
	assert.Equal(t, "Namespaces/Namespace Members", violations[2].Path)
	assert.Equal(t, "Namespaces/All", violations[3].Path)
	assert.Equal(t, "[3]", violations[4].Path)
	assert.Contains(t, err.Error(), "Namespaces/Namespace List: empty url")
}

func TestValidateRejectsSharedNodes(t *testing.T) {
	shared := menu.NewNode("a", "functions.html#index_a")
	m := menu.New(
		menu.NewNode("All", "functions.html", shared),
		menu.NewNode("Functions", "functions_func.html", shared),
	)
	violations := menu.ValidationErrors(menu.Validate(m))
	require.Len(t, violations, 1)
	assert.Equal(t, "Functions/a", violations[0].Path)
}

func TestValidateRejectsCycles(t *testing.T) {
	root := menu.NewNode("Classes", "annotated.html")
	root.Children = []*menu.Node{root}
	require.Error(t, menu.Validate(menu.New(root)))
}

func TestValidateMaxDepth(t *testing.T) {
	root := menu.NewNode("level", "index.html")
	current := root
	for i := 0; i < menu.MaxDepth+1; i++ {
		child := menu.NewNode("level", "index.html")
		current.Children = []*menu.Node{child}
		current = child
	}
	violations := menu.ValidationErrors(menu.Validate(menu.New(root)))
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "nesting deeper")
}

func TestValidateRejectsInvalidUTF8(t *testing.T) {
	m := menu.New(
		menu.NewNode("Main\xffPage", "index.html"),
		menu.NewNode("Files", "files\xfe.html"),
	)
	violations := menu.ValidationErrors(menu.Validate(m))
	require.Len(t, violations, 2)
	assert.Equal(t, "text is not valid utf-8", violations[0].Message)
	assert.Equal(t, "Files", violations[1].Path)
	assert.Equal(t, "url is not valid utf-8", violations[1].Message)
}
