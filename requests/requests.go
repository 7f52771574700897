package requests

// Menu - request the whole menu of a site
type Menu struct {
	Site string `json:"site"`
}

// URLs - resolve many text paths of a site at once, map[name]path
type URLs struct {
	Site  string              `json:"site"`
	Paths map[string][]string `json:"paths"`
}

// Update - request an update
type Update struct{}

// Repo - query repo
type Repo struct{}
