package requests

// Node - an abstract node request, use this one to request navigations
type Node struct {
	// from which site, empty means the first of env.sites that has the path
	Site string `json:"site"`
	// text path from the root, empty for the whole menu
	Path []string `json:"path"`
	// number of levels below the node, 0 for all of them
	Depth int `json:"depth"`
	// doublestar globs on the page part of the url, a node that does not match
	// is dropped with its subtree
	URLPatterns []string `json:"urlPatterns"`
}
