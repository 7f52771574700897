package requests

// Resolve - the standard request of a renderer: where in the menu is this page
type Resolve struct {
	Env *Env   `json:"env"`
	URL string `json:"url"`
	// navigations to deliver along with the resolved node
	Nodes map[string]*Node `json:"nodes"`
}
