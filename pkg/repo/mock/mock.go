package mock

import (
	"net/http"
	"net/http/httptest"
	"path"
	"runtime"
	"testing"
	"time"

	"github.com/foomo/menuserver/requests"
)

// Dir directory of the fixture files
func Dir() string {
	_, filename, _, _ := runtime.Caller(0)
	return path.Dir(filename)
}

// GetMockData serves the fixture files and returns a var dir for the history
func GetMockData(tb testing.TB) (*httptest.Server, string) {
	tb.Helper()
	mockDir := Dir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(time.Millisecond * 50)
		mockFilename := path.Join(mockDir, req.URL.Path[1:])
		http.ServeFile(w, req, mockFilename)
	}))
	tb.Cleanup(server.Close)

	return server, tb.TempDir()
}

// MakeNodesRequest a request for the namespace navigation of repo-ok.json
func MakeNodesRequest() *requests.Nodes {
	return &requests.Nodes{
		Env: &requests.Env{
			Sites: []string{"latest"},
		},
		Nodes: map[string]*requests.Node{
			"namespaces": {
				Site: "latest",
				Path: []string{"Namespaces"},
			},
		},
	}
}

// MakeURLsRequest resolves some text paths of repo-ok.json
func MakeURLsRequest() *requests.URLs {
	return &requests.URLs{
		Site: "latest",
		Paths: map[string][]string{
			"classes": {"Classes", "Class Index"},
			"all":     {"Namespaces", "Namespace Members", "All"},
			"missing": {"Nope"},
		},
	}
}

// MakeResolveRequest a mock resolve request
func MakeResolveRequest() *requests.Resolve {
	return &requests.Resolve{
		URL: "namespacemembers.html#index_b",
		Env: &requests.Env{
			Sites: []string{"latest", "legacy"},
		},
		Nodes: map[string]*requests.Node{
			"main": {
				Depth: 1,
			},
		},
	}
}
