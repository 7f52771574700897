package responses

// Status status type of Resolved responses
type Status int

const (
	// StatusOk we found the page in a menu
	StatusOk Status = 200
	// StatusNotFound no menu links to the page
	StatusNotFound Status = 404
)
