package cmd

import (
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/foomo/menuserver/menu"
	"github.com/foomo/menuserver/pkg/repo/mock"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, NewValidateCommand(), fixture("repo-ok.json"))
	require.NoError(t, err)
	assert.Equal(t, "ok site \"latest\": 13 nodes\nok site \"legacy\": 4 nodes\n", out)

	out, err = execute(t, NewValidateCommand(), fixture("menudata.js"), "--default-site", "docs")
	require.NoError(t, err)
	assert.Equal(t, "ok site \"docs\": 4 nodes\n", out)
}

func TestValidateCommandInvalid(t *testing.T) {
	out, err := execute(t, NewValidateCommand(), fixture("repo-invalid.json"))
	require.ErrorIs(t, err, errInvalidDocument)
	assert.Contains(t, out, "error")
	assert.NotContains(t, out, "ok site")

	out, err = execute(t, NewValidateCommand(), fixture("repo-broken-json.json"))
	require.ErrorIs(t, err, errInvalidDocument)
	assert.Contains(t, out, "error")

	_, err = execute(t, NewValidateCommand(), fixture("does-not-exist.json"))
	require.ErrorIs(t, err, errInvalidDocument)
}

func TestPrintCommand(t *testing.T) {
	out, err := execute(t, NewPrintCommand(), fixture("menudata.js"))
	require.NoError(t, err)
	assert.Equal(t, `├── Main Page  index.html
└── Classes  annotated.html
    ├── Class List  annotated.html
    └── Class Index  classes.html
4 nodes, 2 levels
`, out)

	out, err = execute(t, NewPrintCommand(), fixture("repo-ok.json"), "--site", "legacy", "--urls=false", "--depth", "1")
	require.NoError(t, err)
	assert.Equal(t, `├── Main Page
└── Files
4 nodes, 2 levels
`, out)
}

func TestPrintCommandAllSites(t *testing.T) {
	out, err := execute(t, NewPrintCommand(), fixture("repo-ok.json"), "--depth", "1", "--urls=false")
	require.NoError(t, err)
	assert.Contains(t, out, "latest\n├── Main Page\n")
	assert.Contains(t, out, "\n\nlegacy\n├── Main Page\n")

	_, err = execute(t, NewPrintCommand(), fixture("repo-ok.json"), "--site", "missing")
	require.Error(t, err)
}

func TestConvertCommand(t *testing.T) {
	out, err := execute(t, NewConvertCommand(), fixture("repo-ok.yaml"), "--to", "js")
	require.NoError(t, err)
	assert.Equal(t, `var menudata={children:[
{text:"Main Page",url:"index.html"},
{text:"Files",url:"files.html",children:[
{text:"File List",url:"files.html"},
{text:"File Members",url:"globals.html"}]}]}
`, out)

	out, err = execute(t, NewConvertCommand(), fixture("menudata.js"), "--to", "js", "--var-name", "navtree", "--license-header", "MIT")
	require.NoError(t, err)
	assert.Contains(t, out, "/*\nMIT\n*/\nvar navtree={children:[\n")
}

func TestConvertCommandSites(t *testing.T) {
	_, err := execute(t, NewConvertCommand(), fixture("repo-ok.json"), "--to", "yaml")
	require.Error(t, err, "a site map needs --site")

	output := filepath.Join(t.TempDir(), "legacy.json")
	_, err = execute(t, NewConvertCommand(), fixture("repo-ok.json"), "--to", "json", "--site", "legacy", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	m, err := menu.Unmarshal(menu.FormatJSON, data)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Count())
	assert.NotNil(t, m.Find("Files", "Globals"))

	_, err = execute(t, NewConvertCommand(), fixture("repo-ok.yaml"), "--to", "xml")
	require.Error(t, err)
}

func TestSelectSite(t *testing.T) {
	menus := map[string]*menu.Menu{
		"a": menu.New(menu.NewNode("A", "a.html")),
		"b": menu.New(menu.NewNode("B", "b.html")),
	}

	name, m, err := selectSite(menus, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", name)
	assert.Same(t, menus["b"], m)

	_, _, err = selectSite(menus, "")
	require.Error(t, err)

	delete(menus, "b")
	name, _, err = selectSite(menus, "")
	require.NoError(t, err)
	assert.Equal(t, "a", name)

	_, _, err = selectSite(map[string]*menu.Menu{}, "")
	require.Error(t, err)
}

func TestFlagsFromEnv(t *testing.T) {
	t.Setenv("MENU_SERVER_BASE_PATH", "/docs/menu")
	t.Setenv("MENU_SERVER_POLL", "true")
	t.Setenv("MENU_SERVER_POLL_INTERVAL", "5s")
	t.Setenv("MENU_SERVER_SOURCE_FORMAT", "yml")

	v := newViper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addBasePathFlag(flags, v)
	addRepoFlags(flags, v)

	assert.Equal(t, "/docs/menu", basePathFlag(v))
	assert.True(t, pollFlag(v))
	assert.Equal(t, "5s", pollIntervalFlag(v).String())
	format, err := sourceFormatFlag(v)
	require.NoError(t, err)
	assert.Equal(t, menu.FormatYAML, format)
	assert.Equal(t, "default", defaultSiteFlag(v))
	assert.Equal(t, 2, historyLimitFlag(v))
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fixture(name string) string {
	return path.Join(mock.Dir(), name)
}
