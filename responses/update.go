package responses

// Update - result of a menu reload
type Update struct {
	Success bool `json:"success"`
	// this is for humans
	ErrorMessage string `json:"errorMessage"`
	// sites served after the update, sorted
	Sites []string `json:"sites"`
	// document url last loaded through polling
	Revision string `json:"revision,omitempty"`
	Stats    Stats  `json:"stats"`
}
