package client

import (
	"context"

	"github.com/foomo/menuserver/pkg/handler"
	"github.com/foomo/menuserver/responses"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Transport sends a request to a route and decodes the reply into response
type Transport interface {
	Call(ctx context.Context, route handler.Route, request interface{}, response interface{}) error
	Close()
}

type serverResponse struct {
	Reply jsoniter.RawMessage `json:"reply"`
}

type remoteError struct {
	Status  *int    `json:"status"`
	Code    *int    `json:"code"`
	Message *string `json:"message"`
}

// decodeReply unwraps {"reply": ...}, remote errors are returned as
// *responses.Error
func decodeReply(data []byte, response interface{}) error {
	envelope := serverResponse{}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return errors.Wrap(err, "could not unmarshal response")
	}
	if len(envelope.Reply) == 0 {
		return errors.New("response without reply")
	}
	remoteErr := remoteError{}
	if json.Unmarshal(envelope.Reply, &remoteErr) == nil && remoteErr.Status != nil && remoteErr.Code != nil && remoteErr.Message != nil {
		return &responses.Error{
			Status:  *remoteErr.Status,
			Code:    *remoteErr.Code,
			Message: *remoteErr.Message,
		}
	}
	if err := json.Unmarshal(envelope.Reply, response); err != nil {
		return errors.Wrap(err, "could not unmarshal reply")
	}
	return nil
}
