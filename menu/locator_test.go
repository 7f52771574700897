package menu_test

import (
	"testing"

	"github.com/foomo/menuserver/menu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocator(t *testing.T) {
	tests := map[string]struct {
		url      string
		page     string
		fragment string
		letter   string
		wantErr  bool
	}{
		"page":            {url: "index.html", page: "index.html"},
		"index fragment":  {url: "namespacemembers.html#index_a", page: "namespacemembers.html", fragment: "index_a", letter: "a"},
		"other fragment":  {url: "classes.html#details", page: "classes.html", fragment: "details"},
		"underscore page": {url: "namespacemembers_func.html#index_z", page: "namespacemembers_func.html", fragment: "index_z", letter: "z"},
		"empty":           {url: "", wantErr: true},
		"no html":         {url: "index.php", wantErr: true},
		"absolute":        {url: "/index.html", wantErr: true},
		"scheme":          {url: "https://example.com/index.html", wantErr: true},
		"empty fragment":  {url: "index.html#", wantErr: true},
		"bare fragment":   {url: "#index_a", wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			loc, err := menu.ParseLocator(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.page, loc.Page)
			assert.Equal(t, tt.fragment, loc.Fragment)
			assert.Equal(t, tt.fragment != "", loc.HasFragment())
			assert.Equal(t, tt.url, loc.String())
			letter, ok := loc.IndexLetter()
			assert.Equal(t, tt.letter != "", ok)
			assert.Equal(t, tt.letter, letter)
		})
	}
}
