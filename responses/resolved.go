package responses

import "github.com/foomo/menuserver/menu"

// Resolved where a page sits in a menu
type Resolved struct {
	Status Status `json:"status"`
	// site the page was found in, the first requested site otherwise
	Site string `json:"site"`
	// the url of the node, may differ from the requested one in its fragment
	URL  string     `json:"url"`
	Node *menu.Node `json:"node"`
	// ancestors of the node root-first, without their children
	Breadcrumb []*menu.Node `json:"breadcrumb"`
	// requested navigations
	Nodes map[string]*menu.Node `json:"nodes"`
}

// NewResolved constructor
func NewResolved() *Resolved {
	return &Resolved{
		Breadcrumb: []*menu.Node{},
		Nodes:      map[string]*menu.Node{},
	}
}
