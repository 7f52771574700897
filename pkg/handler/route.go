package handler

// Route type
type Route string

const (
	// RouteGetMenu get the whole menu of a site
	RouteGetMenu Route = "getMenu"
	// RouteGetNodes get navigations
	RouteGetNodes Route = "getNodes"
	// RouteResolve find the node of a page url
	RouteResolve Route = "resolve"
	// RouteGetURLs get urls, many at once, to keep it fast
	RouteGetURLs Route = "getURLs"
	// RouteUpdate update repo
	RouteUpdate Route = "update"
	// RouteGetRepo get the whole repo
	RouteGetRepo Route = "getRepo"
)

// error codes of responses.Error
const (
	ErrorCodeUnknownHandler = 1
	ErrorCodeBadJSON        = 2
	ErrorCodeAPI            = 3
	ErrorCodeBadHeader      = 4
)
