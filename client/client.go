package client

import (
	"context"
	"net/http"
	"time"

	"github.com/foomo/menuserver/menu"
	"github.com/foomo/menuserver/pkg/handler"
	"github.com/foomo/menuserver/pkg/utils"
	"github.com/foomo/menuserver/requests"
	"github.com/foomo/menuserver/responses"
	"github.com/pkg/errors"
)

// Client a menu server client
type Client struct {
	t Transport
}

// New client on top of a transport
func New(t Transport) *Client {
	return &Client{
		t: t,
	}
}

// NewHTTPClient talks to the http handler, e.g. http://localhost:8080/menuserver
func NewHTTPClient(server string, client ...*http.Client) (*Client, error) {
	if !utils.IsValidURL(server) {
		return nil, errors.Errorf("invalid server url: %q", server)
	}
	var c *http.Client
	if len(client) > 0 {
		c = client[0]
	}
	return New(NewHTTPTransport(server, c)), nil
}

// NewSocketClient talks to the socket server at addr
func NewSocketClient(addr string, connectionPoolSize int, waitTimeout time.Duration) (*Client, error) {
	if addr == "" {
		return nil, errors.New("empty socket address")
	}
	if connectionPoolSize < 1 {
		return nil, errors.Errorf("connection pool size must be positive, got %d", connectionPoolSize)
	}
	if waitTimeout <= 0 {
		return nil, errors.Errorf("wait timeout must be positive, got %s", waitTimeout)
	}
	return New(NewSocketTransport(addr, connectionPoolSize, waitTimeout)), nil
}

// Update tell the server to update itself
func (c *Client) Update(ctx context.Context) (*responses.Update, error) {
	response := &responses.Update{}
	if err := c.t.Call(ctx, handler.RouteUpdate, &requests.Update{}, response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetMenu the whole menu of a site, empty for the default site
func (c *Client) GetMenu(ctx context.Context, site string) (*menu.Menu, error) {
	response := &menu.Menu{}
	if err := c.t.Call(ctx, handler.RouteGetMenu, &requests.Menu{Site: site}, response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetNodes request navigations
func (c *Client) GetNodes(ctx context.Context, env *requests.Env, nodes map[string]*requests.Node) (map[string]*menu.Node, error) {
	response := map[string]*menu.Node{}
	req := &requests.Nodes{
		Env:   env,
		Nodes: nodes,
	}
	if err := c.t.Call(ctx, handler.RouteGetNodes, req, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// Resolve where a page url sits in the menus
func (c *Client) Resolve(ctx context.Context, req *requests.Resolve) (*responses.Resolved, error) {
	response := &responses.Resolved{}
	if err := c.t.Call(ctx, handler.RouteResolve, req, response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetURLs resolve text paths of a site to urls
func (c *Client) GetURLs(ctx context.Context, site string, paths map[string][]string) (map[string]string, error) {
	response := map[string]string{}
	req := &requests.URLs{
		Site:  site,
		Paths: paths,
	}
	if err := c.t.Call(ctx, handler.RouteGetURLs, req, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetRepo get the menus of all sites
func (c *Client) GetRepo(ctx context.Context) (map[string]*menu.Menu, error) {
	response := map[string]*menu.Menu{}
	if err := c.t.Call(ctx, handler.RouteGetRepo, &requests.Repo{}, &response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *Client) Close() {
	c.t.Close()
}
