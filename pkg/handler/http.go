package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/foomo/menuserver/menu"
	"github.com/foomo/menuserver/pkg/metrics"
	"github.com/foomo/menuserver/pkg/repo"
	httputils "github.com/foomo/keel/utils/net/http"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// PathMenuDataJS renders a site as doxygen menudata.js
	PathMenuDataJS = "menudata.js"
	// PathMenuJSON renders a site as plain json
	PathMenuJSON = "menu.json"
)

type (
	HTTP struct {
		l    *zap.Logger
		path string
		repo *repo.Repo
		exec *executor
	}
	HTTPOption func(*HTTP)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns a shiny new web server
func NewHTTP(l *zap.Logger, repo *repo.Repo, opts ...HTTPOption) http.Handler {
	inst := &HTTP{
		l:    l.Named("http"),
		path: "/menuserver",
		repo: repo,
	}

	for _, opt := range opts {
		opt(inst)
	}
	inst.path = strings.TrimSuffix(inst.path, "/")
	inst.exec = &executor{l: inst.l, repo: repo}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithPath(v string) HTTPOption {
	return func(o *HTTP) {
		o.path = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutPrefix(r.URL.Path, h.path+"/")
	if !ok {
		httputils.ServerError(h.l, w, r, http.StatusNotFound, errors.Errorf("unknown path %q", r.URL.Path))
		return
	}

	if r.Method == http.MethodGet {
		switch name {
		case PathMenuDataJS:
			h.render(w, r, menu.FormatJS, "application/javascript; charset=utf-8")
		case PathMenuJSON:
			h.render(w, r, menu.FormatJSON, "application/json")
		default:
			httputils.ServerError(h.l, w, r, http.StatusNotFound, errors.Errorf("unknown path %q", r.URL.Path))
		}
		return
	}

	if r.Method != http.MethodPost {
		httputils.ServerError(h.l, w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	if r.Body == nil {
		httputils.BadRequestServerError(h.l, w, r, errors.New("empty request body"))
		return
	}

	bytes, err := io.ReadAll(r.Body)
	if err != nil {
		httputils.BadRequestServerError(h.l, w, r, errors.Wrap(err, "failed to read incoming request"))
		return
	}

	route := Route(name)
	if route == RouteGetRepo {
		w.Header().Set("Content-Type", "application/json")
		if err := h.repo.WriteRepoBytes(r.Context(), w); err != nil {
			h.l.Error("failed to write repo", zap.Error(err))
		}
		return
	}

	reply, errReply := h.exec.handleRequest(r.Context(), route, bytes, sourceWebServer)
	if errReply != nil {
		http.Error(w, errReply.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(reply)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) render(w http.ResponseWriter, r *http.Request, format menu.Format, contentType string) {
	site := r.URL.Query().Get("site")
	metrics.MenuRequestCounter.WithLabelValues(sourceWebServer).Inc()

	m, err := h.repo.GetMenu(site)
	if errors.Is(err, repo.ErrSiteNotFound) {
		httputils.ServerError(h.l, w, r, http.StatusNotFound, err)
		return
	} else if err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, err)
		return
	}

	data, err := menu.Marshal(format, m)
	if err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, errors.Wrap(err, "failed to render menu"))
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
