package repo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/foomo/menuserver/menu"
	"github.com/foomo/menuserver/pkg/metrics"
	"github.com/foomo/menuserver/requests"
	"github.com/foomo/menuserver/responses"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultSite = "default"

var ErrSiteNotFound = errors.New("site not found")

// Repo menu repository
type (
	Repo struct {
		l                       *zap.Logger
		url                     string
		format                  menu.Format
		defaultSite             string
		poll                    bool
		pollInterval            time.Duration
		pollVersion             string
		pollVersionLock         sync.RWMutex
		onLoaded                func()
		loaded                  *atomic.Bool
		updating                *atomic.Bool
		initialized             chan struct{}
		history                 *History
		httpClient              *http.Client
		updateInProgressChannel chan chan updateResponse
		directory               map[string]*Site
		directoryLock           sync.RWMutex
		jsonBuffer              *bytes.Buffer
		jsonBufferLock          sync.RWMutex
	}
	Option func(*Repo)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, url string, history *History, opts ...Option) *Repo {
	inst := &Repo{
		l:                       l.Named("repo"),
		url:                     url,
		format:                  menu.FormatAuto,
		defaultSite:             DefaultSite,
		poll:                    false,
		loaded:                  &atomic.Bool{},
		updating:                &atomic.Bool{},
		initialized:             make(chan struct{}),
		pollInterval:            time.Minute,
		history:                 history,
		httpClient:              http.DefaultClient,
		directory:               map[string]*Site{},
		updateInProgressChannel: make(chan chan updateResponse),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithHTTPClient(v *http.Client) Option {
	return func(o *Repo) {
		o.httpClient = v
	}
}

func WithPoll(v bool) Option {
	return func(o *Repo) {
		o.poll = v
	}
}

func WithPollInterval(v time.Duration) Option {
	return func(o *Repo) {
		o.pollInterval = v
	}
}

// WithSourceFormat forces the source format instead of detecting it
func WithSourceFormat(v menu.Format) Option {
	return func(o *Repo) {
		o.format = v
	}
}

// WithDefaultSite site name used for single menu documents
func WithDefaultSite(v string) Option {
	return func(o *Repo) {
		if v != "" {
			o.defaultSite = v
		}
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (r *Repo) Loaded() bool {
	return r.loaded.Load()
}

// Initialized is closed once the initial update of Start finished, successful
// or not
func (r *Repo) Initialized() <-chan struct{} {
	return r.initialized
}

func (r *Repo) DefaultSite() string {
	return r.defaultSite
}

func (r *Repo) Directory() map[string]*Site {
	r.directoryLock.RLock()
	defer r.directoryLock.RUnlock()
	return r.directory
}

func (r *Repo) JSONBufferBytes() []byte {
	r.jsonBufferLock.RLock()
	defer r.jsonBufferLock.RUnlock()
	if r.jsonBuffer == nil {
		return nil
	}
	return r.jsonBuffer.Bytes()
}

func (r *Repo) SetJSONBuffer(v *bytes.Buffer) {
	r.jsonBufferLock.Lock()
	defer r.jsonBufferLock.Unlock()
	r.jsonBuffer = v
}

func (r *Repo) PollVersion() string {
	r.pollVersionLock.RLock()
	defer r.pollVersionLock.RUnlock()
	return r.pollVersion
}

func (r *Repo) setPollVersion(v string) {
	r.pollVersionLock.Lock()
	defer r.pollVersionLock.Unlock()
	r.pollVersion = v
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (r *Repo) OnLoaded(fn func()) {
	r.onLoaded = fn
}

// Sites names of all loaded sites, sorted
func (r *Repo) Sites() []string {
	directory := r.Directory()
	ret := make([]string, 0, len(directory))
	for name := range directory {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// GetMenu the whole menu of a site, an empty site name means the default site.
// The returned menu is shared and must not be modified.
func (r *Repo) GetMenu(site string) (*menu.Menu, error) {
	if site == "" {
		site = r.defaultSite
	}
	s, ok := r.Directory()[site]
	if !ok {
		return nil, errors.Wrapf(ErrSiteNotFound, "unknown site %q", site)
	}
	return s.Menu, nil
}

// GetNodes get named navigations, invalid requests map to nil
func (r *Repo) GetNodes(req *requests.Nodes) map[string]*menu.Node {
	if req == nil {
		return nil
	}
	return r.getNodes(req.Nodes, req.Env)
}

// Resolve finds the node a page url belongs to and collects the requested
// navigations in one call.
//
// The sites of req.Env are tried in their order, the first one that links to
// the url wins. When nothing links to it, the status is 404 and the first site
// is used for navigations without an explicit site.
func (r *Repo) Resolve(req *requests.Resolve) (*responses.Resolved, error) {
	if err := r.validateResolveRequest(req); err != nil {
		return nil, errors.Wrap(err, "repo.Resolve invalid request")
	}
	r.l.Debug("repo.Resolve", zap.String("url", req.URL))

	res := responses.NewResolved()
	directory := r.Directory()
	resolvedSite := ""
	for _, siteName := range req.Env.Sites {
		site, ok := directory[siteName]
		if !ok {
			continue
		}
		if e, ok := site.lookup(req.URL); ok {
			resolvedSite = siteName
			res.Status = responses.StatusOk
			res.URL = e.node.URL
			res.Node = e.node.Shallow()
			res.Breadcrumb = e.breadcrumb()
			break
		}
	}
	if resolvedSite == "" {
		r.l.Debug("url not found, falling back to first site",
			zap.String("url", req.URL),
			zap.String("site", req.Env.Sites[0]),
		)
		metrics.UnresolvedURLCounter.WithLabelValues(req.Env.Sites[0]).Inc()
		res.Status = responses.StatusNotFound
		resolvedSite = req.Env.Sites[0]
	}
	res.Site = resolvedSite

	// navigations without a site follow the resolved one
	nodeRequests := make(map[string]*requests.Node, len(req.Nodes))
	for name, nodeRequest := range req.Nodes {
		if nodeRequest != nil && nodeRequest.Site == "" {
			cp := *nodeRequest
			cp.Site = resolvedSite
			nodeRequest = &cp
		}
		nodeRequests[name] = nodeRequest
	}
	res.Nodes = r.getNodes(nodeRequests, req.Env)
	return res, nil
}

// GetURLs resolve many text paths to urls, unknown paths map to ""
func (r *Repo) GetURLs(site string, paths map[string][]string) map[string]string {
	urls := make(map[string]string, len(paths))
	if site == "" {
		site = r.defaultSite
	}
	s, ok := r.Directory()[site]
	for name, path := range paths {
		urls[name] = ""
		if !ok {
			continue
		}
		if n := s.Menu.Find(path...); n != nil {
			urls[name] = n.URL
		}
	}
	return urls
}

// WriteRepoBytes writes all sites to the provided writer.
// It serves from the in-memory buffer, falling back to storage only when empty.
// The result is wrapped as service response, e.g: {"reply": <menus>}
func (r *Repo) WriteRepoBytes(ctx context.Context, w io.Writer) error {
	data := r.JSONBufferBytes()

	if len(data) == 0 {
		// Fallback to storage (cold start or not yet loaded)
		var buf bytes.Buffer
		if err := r.history.GetCurrent(ctx, &buf); err != nil {
			return fmt.Errorf("failed to read repo from storage: %w", err)
		}
		data = buf.Bytes()
	}

	if _, err := w.Write([]byte(`{"reply":`)); err != nil {
		return fmt.Errorf("failed to write repo JSON prefix: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write repo JSON data: %w", err)
	}
	if _, err := w.Write([]byte(`}`)); err != nil {
		return fmt.Errorf("failed to write repo JSON suffix: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context) (updateResponse *responses.Update) {
	floatSeconds := func(nanoSeconds int64) float64 {
		return float64(nanoSeconds) / float64(1000000000)
	}

	r.l.Info("Update triggered")

	start := time.Now()
	updateRepotime, err := r.tryUpdate(ctx)
	updateResponse = &responses.Update{}
	updateResponse.Stats.RepoRuntime = floatSeconds(updateRepotime)

	if err != nil {
		updateResponse.Success = false
		updateResponse.ErrorMessage = err.Error()
		updateResponse.Stats.NumberOfNodes = -1
		updateResponse.Stats.NumberOfURLs = -1

		// a failed update never touches the loaded sites, only a repo that
		// has nothing yet tries the last snapshot
		if !errors.Is(err, ErrUpdateRejected) && !r.Loaded() {
			if restoreErr := r.tryToRestoreCurrent(ctx); restoreErr != nil {
				r.l.Warn("Failed to restore preceding repository version", zap.Error(restoreErr))
			} else {
				r.l.Info("Successfully restored current repository from history")
			}
		}
	} else {
		updateResponse.Success = true
		r.fillStats(&updateResponse.Stats)
	}
	updateResponse.Sites = r.Sites()
	updateResponse.Revision = r.PollVersion()
	updateResponse.Stats.OwnRuntime = floatSeconds(time.Since(start).Nanoseconds()) - updateResponse.Stats.RepoRuntime
	return updateResponse
}

func (r *Repo) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	l := r.l.Named("start")

	g.Go(func() error {
		l.Debug("starting update routine")
		return r.UpdateRoutine(gCtx)
	})

	l.Debug("trying to restore previous repo")
	if err := r.tryToRestoreCurrent(gCtx); errors.Is(err, os.ErrNotExist) {
		l.Info("previous repo content file does not exist")
	} else if err != nil {
		l.Warn("could not restore previous repo content", zap.Error(err))
	} else {
		l.Info("restored previous repo", zap.Strings("sites", r.Sites()))
	}

	r.updating.Store(true)
	g.Go(func() error {
		l.Debug("trying to update initial state")
		_, err := r.enqueueUpdate(gCtx)
		r.updating.Store(false)
		close(r.initialized)
		if err != nil && gCtx.Err() == nil {
			l.Error("failed to update initial state", zap.Error(err))
		}
		if r.poll {
			l.Debug("starting poll routine")
			return r.PollRoutine(gCtx)
		}
		return nil
	})

	return g.Wait()
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (r *Repo) fillStats(stats *responses.Stats) {
	for _, site := range r.Directory() {
		stats.NumberOfSites++
		stats.NumberOfNodes += site.NumberOfNodes()
		stats.NumberOfURLs += site.NumberOfURLs()
	}
}

func (r *Repo) getNodes(nodeRequests map[string]*requests.Node, env *requests.Env) map[string]*menu.Node {
	nodes := map[string]*menu.Node{}
	directory := r.Directory()
	for nodeName, nodeRequest := range nodeRequests {
		nodes[nodeName] = nil
		if nodeName == "" || nodeRequest == nil {
			r.l.Warn("invalid node request", zap.String("name", nodeName))
			continue
		}
		if nodeRequest.Depth < 0 {
			r.l.Warn("invalid node request depth", zap.String("name", nodeName), zap.Int("depth", nodeRequest.Depth))
			continue
		}
		if err := validatePatterns(nodeRequest.URLPatterns); err != nil {
			r.l.Warn("invalid node request patterns", zap.String("name", nodeName), zap.Error(err))
			continue
		}

		site, node, ok := r.findNode(directory, nodeRequest, env)
		if !ok {
			r.l.Debug("invalid tree node requested",
				zap.String("name", nodeName),
				zap.String("site", nodeRequest.Site),
				zap.Strings("path", nodeRequest.Path),
			)
			metrics.InvalidNodeRequests.WithLabelValues(site).Inc()
			continue
		}
		nodes[nodeName] = filterNode(node, nodeRequest.Depth, nodeRequest.URLPatterns)
	}
	return nodes
}

// findNode looks up the path in the requested site or in the first site of
// the env that has it, an empty path addresses the whole menu
func (r *Repo) findNode(directory map[string]*Site, req *requests.Node, env *requests.Env) (string, *menu.Node, bool) {
	candidates := []string{req.Site}
	if req.Site == "" {
		candidates = nil
		if env != nil {
			candidates = append(candidates, env.Sites...)
		}
		if len(candidates) == 0 {
			candidates = []string{r.defaultSite}
		}
	}
	for _, siteName := range candidates {
		site, ok := directory[siteName]
		if !ok {
			continue
		}
		if len(req.Path) == 0 {
			return siteName, &menu.Node{Children: site.Menu.Children}, true
		}
		if n := site.Menu.Find(req.Path...); n != nil {
			return siteName, n, true
		}
	}
	return candidates[0], nil, false
}

// filterNode clones the node with depth levels below it, 0 for all of them,
// children whose page matches none of the patterns are dropped
func filterNode(n *menu.Node, depth int, patterns []string) *menu.Node {
	levels := -1
	if depth > 0 {
		levels = depth
	}
	return filterLevels(n, levels, patterns)
}

func filterLevels(n *menu.Node, levels int, patterns []string) *menu.Node {
	ret := n.Shallow()
	if n.Children == nil || levels == 0 {
		return ret
	}
	ret.Children = []*menu.Node{}
	for _, child := range n.Children {
		if !matchesPatterns(child, patterns) {
			continue
		}
		ret.Children = append(ret.Children, filterLevels(child, levels-1, patterns))
	}
	return ret
}

func matchesPatterns(n *menu.Node, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	loc, err := n.Locator()
	if err != nil {
		return false
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, loc.Page); ok {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("bad url pattern %q", pattern)
		}
	}
	return nil
}

func (r *Repo) validateResolveRequest(req *requests.Resolve) error {
	if req == nil {
		return errors.New("request must not be nil")
	}
	if len(req.URL) == 0 {
		return errors.New("request URL must not be empty")
	}
	if req.Env == nil {
		return errors.New("request.Env must not be nil")
	}
	if len(req.Env.Sites) == 0 {
		return errors.New("request.Env.Sites must not be empty")
	}
	for _, site := range req.Env.Sites {
		if !r.hasSite(site) {
			available := r.Sites()
			return errors.New(fmt.Sprint(
				"unknown site ", site,
				" in request.Env must be one of ", available,
				" repo has ", len(available), " sites",
			))
		}
	}
	return nil
}

func (r *Repo) hasSite(s string) bool {
	_, ok := r.Directory()[s]
	return ok
}
