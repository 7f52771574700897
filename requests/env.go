package requests

// Env - abstract your renderer state
type Env struct {
	// when resolving urls these are processed in their order
	Sites []string `json:"sites"`
}
