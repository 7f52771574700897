package repo

import (
	"github.com/foomo/menuserver/menu"
	"github.com/pkg/errors"
)

type (
	// Site a loaded menu and its lookup tables, never mutated after creation
	Site struct {
		Name   string
		Menu   *menu.Menu
		byURL  map[string][]*siteEntry
		byPage map[string][]*siteEntry
		nodes  int
	}
	siteEntry struct {
		node      *menu.Node
		ancestors []*menu.Node
		depth     int
	}
)

func newSite(name string, m *menu.Menu) (*Site, error) {
	if err := menu.Validate(m); err != nil {
		return nil, errors.Wrapf(err, "invalid menu for site %q", name)
	}
	s := &Site{
		Name:   name,
		Menu:   m,
		byURL:  map[string][]*siteEntry{},
		byPage: map[string][]*siteEntry{},
	}
	err := m.Walk(func(n *menu.Node, ancestors []*menu.Node, depth int) error {
		loc, err := n.Locator()
		if err != nil {
			return err
		}
		e := &siteEntry{node: n, ancestors: ancestors, depth: depth}
		s.byURL[n.URL] = append(s.byURL[n.URL], e)
		s.byPage[loc.Page] = append(s.byPage[loc.Page], e)
		s.nodes++
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to index site %q", name)
	}
	return s, nil
}

// NumberOfNodes nodes in the menu
func (s *Site) NumberOfNodes() int {
	return s.nodes
}

// NumberOfURLs distinct urls in the menu
func (s *Site) NumberOfURLs() int {
	return len(s.byURL)
}

// lookup finds the node for a url, exact matches win over page matches and
// the deepest node wins over its ancestors with the same url. Without an exact
// match the page itself is preferred over its fragments.
func (s *Site) lookup(url string) (*siteEntry, bool) {
	if e := deepest(s.byURL[url]); e != nil {
		return e, true
	}
	loc, err := menu.ParseLocator(url)
	if err != nil {
		return nil, false
	}
	if e := deepest(s.byURL[loc.Page]); e != nil {
		return e, true
	}
	if e := deepest(s.byPage[loc.Page]); e != nil {
		return e, true
	}
	return nil, false
}

func deepest(entries []*siteEntry) *siteEntry {
	var ret *siteEntry
	for _, e := range entries {
		// strict: earlier entries win ties
		if ret == nil || e.depth > ret.depth {
			ret = e
		}
	}
	return ret
}

func (e *siteEntry) breadcrumb() []*menu.Node {
	ret := make([]*menu.Node, len(e.ancestors))
	for i, a := range e.ancestors {
		ret[i] = a.Shallow()
	}
	return ret
}
