package responses

// Stats size of the loaded directory, -1 after a failed update
type Stats struct {
	NumberOfSites int `json:"numberOfSites"`
	NumberOfNodes int `json:"numberOfNodes"`
	// distinct urls summed over all sites
	NumberOfURLs int `json:"numberOfURLs"`
	// seconds spent fetching the document
	RepoRuntime float64 `json:"repoRuntime"`
	// seconds spent decoding and indexing
	OwnRuntime float64 `json:"ownRuntime"`
}
