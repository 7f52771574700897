package handler

import (
	"bytes"
	"context"
	"time"

	"github.com/foomo/menuserver/pkg/metrics"
	"github.com/foomo/menuserver/pkg/repo"
	"github.com/foomo/menuserver/requests"
	"github.com/foomo/menuserver/responses"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	sourceWebServer    = "webserver"
	sourceSocketServer = "socketserver"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// executor runs the json routes shared by both transports
type executor struct {
	l    *zap.Logger
	repo *repo.Repo
}

func (e *executor) handleRequest(ctx context.Context, route Route, jsonBytes []byte, source string) ([]byte, error) {
	start := time.Now()

	reply, err := e.executeRequest(ctx, route, jsonBytes, source)
	result := "success"
	if err != nil {
		result = "error"
	}

	metrics.ServiceRequestCounter.WithLabelValues(string(route), result, source).Inc()
	metrics.ServiceRequestDuration.WithLabelValues(string(route), result, source).Observe(time.Since(start).Seconds())

	return reply, err
}

func (e *executor) executeRequest(ctx context.Context, route Route, jsonBytes []byte, source string) (replyBytes []byte, err error) {
	var (
		reply             interface{}
		apiErr            error
		jsonErr           error
		processIfJSONIsOk = func(err error, processingFunc func()) {
			if err != nil {
				jsonErr = err
				return
			}
			processingFunc()
		}
	)
	metrics.MenuRequestCounter.WithLabelValues(source).Inc()

	// getRepo is written directly to the http.ResponseWriter / net.Conn
	switch route {
	case RouteGetMenu:
		menuRequest := &requests.Menu{}
		processIfJSONIsOk(unmarshalRequest(jsonBytes, menuRequest), func() {
			reply, apiErr = e.repo.GetMenu(menuRequest.Site)
		})
	case RouteGetNodes:
		nodesRequest := &requests.Nodes{}
		processIfJSONIsOk(unmarshalRequest(jsonBytes, nodesRequest), func() {
			reply = e.repo.GetNodes(nodesRequest)
		})
	case RouteResolve:
		resolveRequest := &requests.Resolve{}
		processIfJSONIsOk(unmarshalRequest(jsonBytes, resolveRequest), func() {
			reply, apiErr = e.repo.Resolve(resolveRequest)
		})
	case RouteGetURLs:
		urlsRequest := &requests.URLs{}
		processIfJSONIsOk(unmarshalRequest(jsonBytes, urlsRequest), func() {
			reply = e.repo.GetURLs(urlsRequest.Site, urlsRequest.Paths)
		})
	case RouteUpdate:
		updateRequest := &requests.Update{}
		processIfJSONIsOk(unmarshalRequest(jsonBytes, updateRequest), func() {
			reply = e.repo.Update(ctx)
		})
	default:
		reply = responses.NewError(ErrorCodeUnknownHandler, "unknown handler: "+string(route))
	}

	// error handling
	if jsonErr != nil {
		e.l.Error("could not read incoming json", zap.Error(jsonErr))
		reply = responses.NewError(ErrorCodeBadJSON, "could not read incoming json "+jsonErr.Error())
	} else if apiErr != nil {
		e.l.Error("an API error occurred", zap.Error(apiErr))
		reply = responses.NewError(ErrorCodeAPI, "internal error "+apiErr.Error())
	}

	return e.encodeReply(reply)
}

// unmarshalRequest decodes a request object, a null body is not a request
func unmarshalRequest(jsonBytes []byte, v interface{}) error {
	if bytes.Equal(bytes.TrimSpace(jsonBytes), []byte("null")) {
		return errors.New("request must be a json object")
	}
	return json.Unmarshal(jsonBytes, v)
}

// encodeReply takes an interface and encodes it as JSON
// it returns the resulting JSON and a marshalling error
func (e *executor) encodeReply(reply interface{}) (replyBytes []byte, err error) {
	replyBytes, err = json.Marshal(map[string]interface{}{
		"reply": reply,
	})
	if err != nil {
		e.l.Error("could not encode reply", zap.Error(err))
	}
	return
}
