package requests

// Nodes - which nodes in which sites
type Nodes struct {
	// map[name]*node
	Nodes map[string]*Node `json:"nodes"`
	Env   *Env             `json:"env"`
}
