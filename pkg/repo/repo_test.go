package repo

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foomo/menuserver/menu"
	"github.com/foomo/menuserver/pkg/repo/mock"
	"github.com/foomo/menuserver/requests"
	"github.com/foomo/menuserver/responses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func NewTestRepo(ctx context.Context, l *zap.Logger, url, varDir string, opts ...Option) *Repo {
	h, err := NewHistory(l, HistoryWithHistoryLimit(2), HistoryWithHistoryDir(varDir))
	if err != nil {
		panic(err)
	}
	r := New(l, url, h, opts...)
	go r.Start(ctx) //nolint:errcheck
	select {
	case <-r.Initialized():
	case <-time.After(5 * time.Second):
		panic("repo did not initialize")
	}
	return r
}

func getTestRepo(t *testing.T, path string, opts ...Option) *Repo {
	t.Helper()
	l := testLogger(t)

	mockServer, varDir := mock.GetMockData(t)
	r := NewTestRepo(t.Context(), l, mockServer.URL+path, varDir, opts...)
	response := r.Update(t.Context())
	require.True(t, response.Success, "could not load %s: %s", path, response.ErrorMessage)
	return r
}

func TestLoad404(t *testing.T) {
	var (
		l                  = testLogger(t)
		mockServer, varDir = mock.GetMockData(t)
		r                  = NewTestRepo(t.Context(), l, mockServer.URL+"/repo-no-have", varDir)
	)

	response := r.Update(t.Context())
	require.False(t, response.Success, "can not get a repo, if the server responds with a 404")
	assert.Contains(t, response.ErrorMessage, "bad response code")
	assert.Equal(t, -1, response.Stats.NumberOfNodes)
	assert.False(t, r.Loaded())
}

func TestLoadBrokenRepo(t *testing.T) {
	var (
		l                  = testLogger(t)
		mockServer, varDir = mock.GetMockData(t)
		r                  = NewTestRepo(t.Context(), l, mockServer.URL+"/repo-broken-json.json", varDir)
	)

	response := r.Update(t.Context())
	require.False(t, response.Success, "how could we load a broken json")
	assert.Empty(t, r.Sites())
}

func TestLoadInvalidRepo(t *testing.T) {
	var (
		l                  = testLogger(t)
		mockServer, varDir = mock.GetMockData(t)
		r                  = NewTestRepo(t.Context(), l, mockServer.URL+"/repo-invalid.json", varDir)
	)

	response := r.Update(t.Context())
	require.False(t, response.Success)
	assert.Contains(t, response.ErrorMessage, `site "latest"`)
}

func TestLoadRepo(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")

	response := r.Update(t.Context())
	require.True(t, response.Success, "could not load valid repo")
	assert.Equal(t, responses.Stats{
		NumberOfSites: 2,
		NumberOfNodes: 17,
		NumberOfURLs:  12,
		RepoRuntime:   response.Stats.RepoRuntime,
		OwnRuntime:    response.Stats.OwnRuntime,
	}, response.Stats)
	assert.GreaterOrEqual(t, response.Stats.RepoRuntime, 0.05, "the server was too fast")
	assert.Equal(t, []string{"latest", "legacy"}, r.Sites())
	assert.Equal(t, r.Sites(), response.Sites)
	assert.Empty(t, response.Revision, "revisions come from polling only")
	assert.True(t, r.Loaded())
}

func TestDecodeVersionedSites(t *testing.T) {
	menus, err := DecodeDocument(menu.FormatYAML, []byte(`
2.3:
  children:
    - text: Main Page
      url: index.html
"2.10":
  children:
    - text: Main Page
      url: index.html
    - text: Files
      url: files.html
3:
  children:
    - text: Main Page
      url: index.html
`), DefaultSite)
	require.NoError(t, err)
	require.Len(t, menus, 3)
	assert.Equal(t, 1, menus["2.3"].Count())
	assert.Equal(t, 2, menus["2.10"].Count())
	assert.Equal(t, 1, menus["3"].Count())

	_, err = DecodeDocument(menu.FormatYAML, []byte("2.3:\n  children:\n    - text: 1\n      url: index.html\n"), DefaultSite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `site "2.3"`)
}

func TestLoadFormats(t *testing.T) {
	for path, expected := range map[string]int{
		"/repo-ok.yaml": 4,
		"/menudata.js":  4,
	} {
		t.Run(path, func(t *testing.T) {
			r := getTestRepo(t, path, WithDefaultSite("docs"))
			assert.Equal(t, []string{"docs"}, r.Sites())
			m, err := r.GetMenu("")
			require.NoError(t, err)
			assert.Equal(t, expected, m.Count())
		})
	}
}

func TestLoadForcedFormat(t *testing.T) {
	var (
		l                  = testLogger(t)
		mockServer, varDir = mock.GetMockData(t)
		r                  = NewTestRepo(t.Context(), l, mockServer.URL+"/menudata.js", varDir, WithSourceFormat(menu.FormatJSON))
	)
	response := r.Update(t.Context())
	assert.False(t, response.Success, "javascript is not json")
}

func TestLoadFromFile(t *testing.T) {
	l := testLogger(t)
	file := filepath.Join(mock.Dir(), "repo-ok.yaml")
	for _, url := range []string{file, "file://" + file} {
		r := NewTestRepo(t.Context(), l, url, t.TempDir())
		require.True(t, r.Loaded(), url)
		assert.Equal(t, []string{DefaultSite}, r.Sites())
	}
}

func TestSiteHygiene(t *testing.T) {
	mockServer, _ := mock.GetMockData(t)
	r := getTestRepo(t, "/repo-ok.json")
	require.Len(t, r.Sites(), 2)

	r.url = mockServer.URL + "/repo-ok.yaml"
	response := r.Update(t.Context())
	require.True(t, response.Success)
	assert.Equal(t, []string{DefaultSite}, r.Sites(), "site hygiene failed")
}

func TestFailedUpdateKeepsSites(t *testing.T) {
	mockServer, _ := mock.GetMockData(t)
	r := getTestRepo(t, "/repo-ok.json")
	before := r.JSONBufferBytes()

	r.url = mockServer.URL + "/repo-invalid.json"
	response := r.Update(t.Context())
	require.False(t, response.Success)

	assert.Equal(t, []string{"latest", "legacy"}, r.Sites())
	assert.Equal(t, before, r.JSONBufferBytes())
	_, err := r.GetMenu("latest")
	require.NoError(t, err)
}

func TestUpdateRejected(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")
	r.updating.Store(true)
	defer r.updating.Store(false)

	response := r.Update(t.Context())
	assert.False(t, response.Success)
	assert.Equal(t, ErrUpdateRejected.Error(), response.ErrorMessage)
	assert.Len(t, r.Sites(), 2, "a rejected update must not touch the repo")
}

func TestRestoreFromHistory(t *testing.T) {
	var (
		l                  = testLogger(t)
		mockServer, varDir = mock.GetMockData(t)
	)
	first := NewTestRepo(t.Context(), l, mockServer.URL+"/repo-ok.json", varDir)
	require.True(t, first.Loaded())

	loaded := make(chan struct{})
	h, err := NewHistory(l, HistoryWithHistoryDir(varDir))
	require.NoError(t, err)
	second := New(l, mockServer.URL+"/repo-no-have", h)
	second.OnLoaded(func() { close(loaded) })
	go second.Start(t.Context()) //nolint:errcheck

	select {
	case <-loaded:
	case <-time.After(5 * time.Second):
		t.Fatal("repo was not restored")
	}
	<-second.Initialized()
	assert.Equal(t, []string{"latest", "legacy"}, second.Sites())
	assert.JSONEq(t, string(first.JSONBufferBytes()), string(second.JSONBufferBytes()))
}

func TestRestoreFromBackup(t *testing.T) {
	var (
		l                  = testLogger(t)
		mockServer, varDir = mock.GetMockData(t)
	)
	first := NewTestRepo(t.Context(), l, mockServer.URL+"/repo-ok.json", varDir)
	require.True(t, first.Loaded())
	require.NoError(t, os.WriteFile(filepath.Join(varDir, CurrentKey), []byte(`{"latest":`), 0o600))

	h, err := NewHistory(l, HistoryWithHistoryDir(varDir))
	require.NoError(t, err)
	second := New(l, mockServer.URL+"/repo-no-have", h)
	require.NoError(t, second.tryToRestoreCurrent(t.Context()))
	assert.True(t, second.Loaded())
	assert.Equal(t, []string{"latest", "legacy"}, second.Sites())
}

func TestPoll(t *testing.T) {
	mockServer, varDir := mock.GetMockData(t)
	var current atomic.Value
	current.Store(mockServer.URL + "/repo-ok.json")
	pollServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(current.Load().(string) + "\n"))
	}))
	defer pollServer.Close()

	r := NewTestRepo(t.Context(), testLogger(t), pollServer.URL, varDir,
		WithPoll(true),
		WithPollInterval(20*time.Millisecond),
	)
	require.True(t, r.Loaded())
	assert.Equal(t, mockServer.URL+"/repo-ok.json", r.PollVersion())
	assert.Len(t, r.Sites(), 2)

	current.Store(mockServer.URL + "/repo-ok.yaml")
	assert.Eventually(t, func() bool {
		return r.PollVersion() == mockServer.URL+"/repo-ok.yaml"
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{DefaultSite}, r.Sites())
}

func TestGetMenu(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")

	m, err := r.GetMenu("legacy")
	require.NoError(t, err)
	assert.Equal(t, 4, m.Count())

	_, err = r.GetMenu("nope")
	require.ErrorIs(t, err, ErrSiteNotFound)

	_, err = r.GetMenu("")
	require.ErrorIs(t, err, ErrSiteNotFound, "there is no default site in a site map")
}

func TestGetNodes(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")

	nodes := r.GetNodes(mock.MakeNodesRequest())
	namespaces, ok := nodes["namespaces"]
	require.True(t, ok, "should be a node")
	require.NotNil(t, namespaces)
	assert.Equal(t, "Namespaces", namespaces.Text)
	require.Len(t, namespaces.Children, 2)
	assert.Len(t, namespaces.Children[1].Children[0].Children, 2)

	// clones
	namespaces.Children[0].Text = "changed"
	m, err := r.GetMenu("latest")
	require.NoError(t, err)
	assert.NotNil(t, m.Find("Namespaces", "Namespace List"))

	assert.Nil(t, r.GetNodes(nil))
	assert.Empty(t, r.GetNodes(&requests.Nodes{}))
}

func TestGetNodesFilters(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")

	nodes := r.GetNodes(&requests.Nodes{
		Env: &requests.Env{Sites: []string{"legacy", "latest"}},
		Nodes: map[string]*requests.Node{
			"shallow":  {Site: "latest", Path: []string{"Namespaces"}, Depth: 1},
			"members":  {Site: "latest", Path: []string{"Namespaces"}, URLPatterns: []string{"namespacemembers*.html"}},
			"root":     {Site: "latest", Depth: 1},
			"fallback": {Path: []string{"Files"}},
			"missing":  {Site: "latest", Path: []string{"Nope"}},
			"badSite":  {Site: "nope", Path: []string{"Files"}},
			"badGlob":  {Site: "latest", Path: []string{"Namespaces"}, URLPatterns: []string{"["}},
			"badDepth": {Site: "latest", Path: []string{"Namespaces"}, Depth: -1},
		},
	})
	require.Len(t, nodes, 8)

	shallow := nodes["shallow"]
	require.NotNil(t, shallow)
	require.Len(t, shallow.Children, 2)
	assert.Nil(t, shallow.Children[1].Children, "depth 1 stops below the direct children")

	members := nodes["members"]
	require.NotNil(t, members)
	require.Len(t, members.Children, 1)
	assert.Equal(t, "Namespace Members", members.Children[0].Text)
	require.Len(t, members.Children[0].Children, 2)
	assert.Len(t, members.Children[0].Children[0].Children, 2, "fragments belong to the matching page")

	root := nodes["root"]
	require.NotNil(t, root)
	assert.Empty(t, root.Text)
	assert.Len(t, root.Children, 4)

	fallback := nodes["fallback"]
	require.NotNil(t, fallback)
	assert.Len(t, fallback.Children, 2, "the first env site that has the path wins")
	assert.Equal(t, "Globals", fallback.Children[1].Text)

	for _, name := range []string{"missing", "badSite", "badGlob", "badDepth"} {
		assert.Nil(t, nodes[name], name)
	}
}

func TestResolve(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")

	tests := []struct {
		name       string
		url        string
		sites      []string
		status     responses.Status
		site       string
		text       string
		breadcrumb []string
	}{
		{"exact fragment", "namespacemembers.html#index_b", []string{"latest"}, responses.StatusOk, "latest", "b", []string{"Namespaces", "Namespace Members", "All"}},
		{"deepest wins", "namespaces.html", []string{"latest"}, responses.StatusOk, "latest", "Namespace List", []string{"Namespaces"}},
		{"unknown fragment falls back to the page", "namespacemembers.html#index_z", []string{"latest"}, responses.StatusOk, "latest", "All", []string{"Namespaces", "Namespace Members"}},
		{"top level", "index.html", []string{"latest"}, responses.StatusOk, "latest", "Main Page", []string{}},
		{"site order", "files.html", []string{"legacy", "latest"}, responses.StatusOk, "legacy", "File List", []string{"Files"}},
		{"second site", "globals.html", []string{"latest", "legacy"}, responses.StatusOk, "legacy", "Globals", []string{"Files"}},
		{"not found", "nope.html", []string{"latest", "legacy"}, responses.StatusNotFound, "latest", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Resolve(&requests.Resolve{
				URL: tt.url,
				Env: &requests.Env{Sites: tt.sites},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.site, res.Site)
			if tt.text == "" {
				assert.Nil(t, res.Node)
			} else {
				require.NotNil(t, res.Node)
				assert.Equal(t, tt.text, res.Node.Text)
				assert.Nil(t, res.Node.Children)
			}
			texts := []string{}
			for _, n := range res.Breadcrumb {
				texts = append(texts, n.Text)
				assert.Nil(t, n.Children)
			}
			assert.Equal(t, tt.breadcrumb, texts)
		})
	}
}

func TestResolveWithNodes(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")
	res, err := r.Resolve(mock.MakeResolveRequest())
	require.NoError(t, err)
	assert.Equal(t, "namespacemembers.html#index_b", res.URL)

	main := res.Nodes["main"]
	require.NotNil(t, main)
	assert.Len(t, main.Children, 4, "navigations follow the resolved site")
}

func TestInvalidResolveRequest(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")
	require.NoError(t, r.validateResolveRequest(mock.MakeResolveRequest()))

	tests := map[string]*requests.Resolve{"nil": nil}

	rEmptyURL := mock.MakeResolveRequest()
	rEmptyURL.URL = ""
	tests["empty url"] = rEmptyURL

	rEmptyEnv := mock.MakeResolveRequest()
	rEmptyEnv.Env = nil
	tests["empty env"] = rEmptyEnv

	rEmptySites := mock.MakeResolveRequest()
	rEmptySites.Env.Sites = []string{}
	tests["empty env sites"] = rEmptySites

	rUnknownSite := mock.MakeResolveRequest()
	rUnknownSite.Env.Sites = []string{"latest", "nope"}
	tests["unknown site"] = rUnknownSite

	for comment, req := range tests {
		_, err := r.Resolve(req)
		assert.Error(t, err, comment)
	}
}

func TestGetURLs(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")
	req := mock.MakeURLsRequest()
	assert.Equal(t, map[string]string{
		"classes": "classes.html",
		"all":     "namespacemembers.html",
		"missing": "",
	}, r.GetURLs(req.Site, req.Paths))

	assert.Equal(t, map[string]string{"classes": ""}, r.GetURLs("nope", map[string][]string{"classes": {"Classes"}}))
}

func TestWriteRepoBytes(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")

	var buf bytes.Buffer
	require.NoError(t, r.WriteRepoBytes(t.Context(), &buf))

	reply := struct {
		Reply map[string]*menu.Menu `json:"reply"`
	}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &reply))
	require.Len(t, reply.Reply, 2)
	assert.Equal(t, 13, reply.Reply["latest"].Count())
}

func TestWriteRepoBytesFromHistory(t *testing.T) {
	var (
		l                  = testLogger(t)
		mockServer, varDir = mock.GetMockData(t)
	)
	NewTestRepo(t.Context(), l, mockServer.URL+"/repo-ok.json", varDir)

	h, err := NewHistory(l, HistoryWithHistoryDir(varDir))
	require.NoError(t, err)
	cold := New(l, mockServer.URL+"/repo-ok.json", h)

	var buf bytes.Buffer
	require.NoError(t, cold.WriteRepoBytes(t.Context(), &buf))
	assert.Contains(t, buf.String(), `{"reply":{"latest"`)
}

func TestWriteRepoBytesRace(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
					var buf bytes.Buffer
					_ = r.WriteRepoBytes(ctx, &buf)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
					r.SetJSONBuffer(bytes.NewBufferString(`{"test":{"children":[]}}`))
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkResolve(b *testing.B) {
	var (
		l                  = testLogger(b)
		mockServer, varDir = mock.GetMockData(b)
		r                  = NewTestRepo(b.Context(), l, mockServer.URL+"/repo-ok.json", varDir)
		req                = mock.MakeResolveRequest()
	)

	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, err := r.Resolve(req); err != nil {
			b.Fatal(err)
		}
	}
}

// testLogger skips debug logs, routines log them after the test context ended
func testLogger(tb testing.TB) *zap.Logger {
	tb.Helper()
	return zaptest.NewLogger(tb, zaptest.Level(zap.InfoLevel))
}
