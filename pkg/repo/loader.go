package repo

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/foomo/menuserver/menu"
	"github.com/foomo/menuserver/pkg/metrics"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	json              = jsoniter.ConfigCompatibleWithStandardLibrary
	ErrUpdateRejected = errors.New("update rejected: update in progress")
)

type updateResponse struct {
	repoRuntime int64
	err         error
}

func (r *Repo) PollRoutine(ctx context.Context) error {
	l := r.l.Named("routine.poll")
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case <-ticker.C:
			if !r.updating.CompareAndSwap(false, true) {
				l.Debug("skipping poll, update in progress")
				continue
			}
			_, err := r.enqueueUpdate(ctx)
			r.updating.Store(false)
			if err == nil {
				l.Debug("poll done", zap.String("revision", r.PollVersion()))
			} else {
				l.Error("update failed", zap.Error(err))
			}
		}
	}
}

func (r *Repo) UpdateRoutine(ctx context.Context) error {
	l := r.l.Named("routine.update")
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case resChan := <-r.updateInProgressChannel:
			start := time.Now()
			l := l.With(zap.String("run_id", uuid.New().String()))

			l.Info("update started")

			repoRuntime, err := r.update(context.WithoutCancel(ctx))
			if err != nil {
				l.Error("update failed", zap.Error(err))
				metrics.UpdatesFailedCounter.WithLabelValues().Inc()
			} else {
				if !r.Loaded() {
					r.loaded.Store(true)
					l.Info("initial update success")
					if r.onLoaded != nil {
						r.onLoaded()
					}
				} else {
					l.Info("update success")
				}
				metrics.UpdatesCompletedCounter.WithLabelValues().Inc()
			}

			resChan <- updateResponse{
				repoRuntime: repoRuntime,
				err:         err,
			}

			metrics.UpdateDuration.WithLabelValues().Observe(time.Since(start).Seconds())
		}
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

// tryUpdate allows only one update request at once
func (r *Repo) tryUpdate(ctx context.Context) (repoRuntime int64, err error) {
	if !r.updating.CompareAndSwap(false, true) {
		r.l.Info("update request rejected, an update is in progress")
		return 0, ErrUpdateRejected
	}
	defer r.updating.Store(false)
	return r.enqueueUpdate(ctx)
}

// enqueueUpdate hands the update to the update routine and waits for it
func (r *Repo) enqueueUpdate(ctx context.Context) (repoRuntime int64, err error) {
	c := make(chan updateResponse, 1)
	select {
	case r.updateInProgressChannel <- c:
		r.l.Debug("update request added to queue")
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	ur := <-c
	return ur.repoRuntime, ur.err
}

// do not call directly, but only through the update routine
func (r *Repo) update(ctx context.Context) (repoRuntime int64, err error) {
	startTimeRepo := time.Now().UnixNano()

	repoURL := r.url
	if r.poll {
		body, err := r.get(ctx, r.url)
		if err != nil {
			return repoRuntime, errors.Wrap(err, "could not poll latest repo download url")
		}
		repoURL = strings.TrimSpace(string(body))
		if repoURL == "" {
			return repoRuntime, errors.New("could not poll latest repo download url: empty response")
		}
		if repoURL == r.PollVersion() && r.Loaded() {
			r.l.Debug("repo is up to date", zap.String("pollVersion", repoURL))
			return repoRuntime, nil
		}
		r.l.Info("new repo poll version", zap.String("pollVersion", repoURL))
	}

	data, err := r.get(ctx, repoURL)
	repoRuntime = time.Now().UnixNano() - startTimeRepo
	if err != nil {
		// we have no document to load, the source did not reply
		return repoRuntime, err
	}

	format := r.format
	if format == menu.FormatAuto {
		format = menu.DetectFormat(repoURL, data)
	}
	r.l.Debug("loading document",
		zap.String("source", repoURL),
		zap.String("format", string(format)),
		zap.Int("length", len(data)),
	)

	menus, err := DecodeDocument(format, data, r.defaultSite)
	if err != nil {
		return repoRuntime, err
	}
	jsonBytes, err := r.loadMenus(menus)
	if err != nil {
		return repoRuntime, err
	}

	if errHistory := r.history.Add(ctx, jsonBytes); errHistory != nil {
		r.l.Error("could not persist current repo in history", zap.Error(errHistory))
		metrics.HistoryPersistFailedCounter.WithLabelValues().Inc()
	} else {
		r.l.Debug("persisted current repo to history")
	}

	if r.poll {
		r.setPollVersion(repoURL)
	}
	return repoRuntime, nil
}

func (r *Repo) get(ctx context.Context, url string) ([]byte, error) {
	return ReadSource(ctx, r.httpClient, url)
}

// ReadSource reads a document from http(s), file:// or a local path
func ReadSource(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to read repo file")
		}
		return data, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create get repo request")
	}
	if client == nil {
		client = http.DefaultClient
	}
	response, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get repo")
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("bad response code from repository %q want %d", response.Status, http.StatusOK)
	}

	buffer := &bytes.Buffer{}
	if _, err := io.Copy(buffer, response.Body); err != nil {
		return nil, errors.Wrap(err, "failed to copy IO stream")
	}
	return buffer.Bytes(), nil
}

// tryToRestoreCurrent loads the current snapshot, a corrupt one is replaced by
// the newest backup that still decodes
func (r *Repo) tryToRestoreCurrent(ctx context.Context) error {
	buffer := &bytes.Buffer{}
	if err := r.history.GetCurrent(ctx, buffer); err != nil {
		return err
	}
	menus, err := decodeSiteMap(menu.FormatJSON, buffer.Bytes())
	if err == nil {
		_, err = r.loadMenus(menus)
	}
	if err != nil {
		r.l.Warn("current snapshot is unusable, trying backups", zap.Error(err))
		if errBackup := r.restoreBackup(ctx); errBackup != nil {
			return multierr.Append(errors.Wrap(err, "failed to restore history snapshot"), errBackup)
		}
	}
	r.loaded.Store(true)
	if r.onLoaded != nil {
		r.onLoaded()
	}
	return nil
}

func (r *Repo) restoreBackup(ctx context.Context) error {
	keys, err := r.history.Backups(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list backups")
	}
	for _, key := range keys {
		buffer := &bytes.Buffer{}
		if err := r.history.GetBackup(ctx, key, buffer); err != nil {
			r.l.Warn("could not read backup", zap.String("backup", key), zap.Error(err))
			continue
		}
		menus, err := decodeSiteMap(menu.FormatJSON, buffer.Bytes())
		if err == nil {
			_, err = r.loadMenus(menus)
		}
		if err != nil {
			r.l.Warn("backup is unusable", zap.String("backup", key), zap.Error(err))
			continue
		}
		r.l.Info("restored backup", zap.String("backup", key))
		return nil
	}
	return errors.New("no usable backup")
}

// loadMenus indexes all sites and swaps the directory and the json buffer,
// nothing is changed when a single site is broken
func (r *Repo) loadMenus(menus map[string]*menu.Menu) ([]byte, error) {
	var err error
	directory := make(map[string]*Site, len(menus))
	for name, m := range menus {
		site, errSite := newSite(name, m)
		if errSite != nil {
			err = multierr.Append(err, errSite)
			continue
		}
		directory[name] = site
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load sites")
	}

	jsonBytes, err := json.Marshal(menus)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode repo")
	}

	for name := range r.Directory() {
		if _, ok := directory[name]; !ok {
			r.l.Info("removing orphaned site", zap.String("site", name))
			metrics.LoadedNodesGauge.DeleteLabelValues(name)
		}
	}
	for name, site := range directory {
		metrics.LoadedNodesGauge.WithLabelValues(name).Set(float64(site.NumberOfNodes()))
	}

	r.directoryLock.Lock()
	r.directory = directory
	r.directoryLock.Unlock()
	r.SetJSONBuffer(bytes.NewBuffer(jsonBytes))
	return jsonBytes, nil
}

// DecodeDocument reads a single menu, stored under defaultSite, or a site map.
// The structure is checked against the menu schema, js is always a single menu.
func DecodeDocument(format menu.Format, data []byte, defaultSite string) (map[string]*menu.Menu, error) {
	if format == menu.FormatJS {
		if err := menu.ValidateSchema(format, data); err != nil {
			return nil, err
		}
		m, err := menu.ParseJS(data)
		if err != nil {
			return nil, err
		}
		return map[string]*menu.Menu{defaultSite: m}, nil
	}
	generic, err := menu.ToGeneric(format, data)
	if err != nil {
		return nil, err
	}
	if isSingleMenu(generic) {
		if err := menu.ValidateSchemaValue(generic); err != nil {
			return nil, err
		}
		m, err := menu.Unmarshal(format, data)
		if err != nil {
			return nil, err
		}
		return map[string]*menu.Menu{defaultSite: m}, nil
	}
	return decodeGenericSiteMap(generic)
}

func decodeSiteMap(format menu.Format, data []byte) (map[string]*menu.Menu, error) {
	generic, err := menu.ToGeneric(format, data)
	if err != nil {
		return nil, err
	}
	return decodeGenericSiteMap(generic)
}

func decodeGenericSiteMap(generic interface{}) (map[string]*menu.Menu, error) {
	sites, ok := generic.(map[string]interface{})
	if !ok {
		return nil, errors.New("document must be a menu or a map of site names to menus")
	}
	if len(sites) == 0 {
		return nil, errors.New("document does not contain any site")
	}
	names := make([]string, 0, len(sites))
	for name := range sites {
		names = append(names, name)
	}
	sort.Strings(names)

	var err error
	menus := make(map[string]*menu.Menu, len(sites))
	for _, name := range names {
		if name == "" {
			err = multierr.Append(err, errors.New("site name must not be empty"))
			continue
		}
		if errSchema := menu.ValidateSchemaValue(sites[name]); errSchema != nil {
			err = multierr.Append(err, errors.Wrapf(errSchema, "site %q", name))
			continue
		}
		siteBytes, errEncode := json.Marshal(sites[name])
		if errEncode != nil {
			err = multierr.Append(err, errors.Wrapf(errEncode, "site %q", name))
			continue
		}
		m, errDecode := menu.Unmarshal(menu.FormatJSON, siteBytes)
		if errDecode != nil {
			err = multierr.Append(err, errors.Wrapf(errDecode, "site %q", name))
			continue
		}
		menus[name] = m
	}
	if err != nil {
		return nil, err
	}
	return menus, nil
}

// isSingleMenu a document with children on its root is a menu, not a site map
func isSingleMenu(generic interface{}) bool {
	root, ok := generic.(map[string]interface{})
	if !ok {
		return false
	}
	children, ok := root["children"]
	if !ok {
		return false
	}
	_, isList := children.([]interface{})
	return isList
}
