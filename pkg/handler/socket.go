package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/foomo/menuserver/pkg/metrics"
	"github.com/foomo/menuserver/pkg/repo"
	"github.com/foomo/menuserver/responses"
	"go.uber.org/zap"
)

// maxSocketJSONLength upper bound of a single request body
const maxSocketJSONLength = 16 << 20

type Socket struct {
	l    *zap.Logger
	repo *repo.Repo
	exec *executor
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewSocket returns a shiny new socket server
func NewSocket(l *zap.Logger, repo *repo.Repo) *Socket {
	inst := &Socket{
		l:    l.Named("socket"),
		repo: repo,
	}
	inst.exec = &executor{l: inst.l, repo: repo}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Accept serves every connection of the listener until it is closed or the
// context is done
func (h *Socket) Accept(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		// this blocks until connection or error
		conn, err := ln.Accept()
		if errors.Is(err, net.ErrClosed) {
			return nil
		} else if err != nil {
			h.l.Error("could not accept connection", zap.Error(err))
			continue
		}
		// a goroutine handles conn so that the loop can accept other connections
		go h.Serve(ctx, conn)
	}
}

// Serve handles requests on the connection until the client closes it
func (h *Socket) Serve(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				if !errors.Is(err, io.EOF) {
					h.l.Error("panic in handle connection", zap.Error(err))
				}
			} else {
				h.l.Error("panic in handle connection", zap.String("error", fmt.Sprint(r)))
			}
		}
	}()
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	h.l.Debug("socketServer.handleConnection", zap.String("remote", remote))
	metrics.NumSocketsGauge.Inc()
	defer metrics.NumSocketsGauge.Dec()

	var (
		headerBuffer [1]byte
		header       strings.Builder
	)
	for {
		// let us read with 1 byte steps on conn until we find "{"
		if _, readErr := conn.Read(headerBuffer[0:]); readErr != nil {
			h.l.Debug("looks like the client closed the connection", zap.Error(readErr))
			return
		}
		if headerBuffer[0] != '{' {
			// adding to header byte by byte
			header.WriteByte(headerBuffer[0])
			continue
		}

		// json has started
		route, jsonLength, headerErr := h.extractHandlerAndJSONLength(header.String())
		header.Reset()
		if headerErr != nil {
			h.l.Error("invalid request could not read header", zap.Error(headerErr))
			encodedErr, encodingErr := h.exec.encodeReply(responses.NewError(ErrorCodeBadHeader, "invalid header "+headerErr.Error()))
			if encodingErr == nil {
				h.writeResponse(conn, encodedErr)
			} else {
				h.l.Error("could not respond to invalid request", zap.Error(encodingErr))
			}
			return
		}
		h.l.Debug("found json", zap.Int("length", jsonLength))

		jsonBytes := make([]byte, jsonLength)
		// that is "{"
		jsonBytes[0] = '{'
		if _, jsonReadErr := io.ReadFull(conn, jsonBytes[1:]); jsonReadErr != nil {
			h.l.Error("could not read json - giving up with this client connection", zap.Error(jsonReadErr))
			return
		}

		h.writeResponse(conn, h.execute(ctx, route, jsonBytes))
		// note: connection remains open
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *Socket) extractHandlerAndJSONLength(header string) (route Route, jsonLength int, err error) {
	headerParts := strings.Split(header, ":")
	if len(headerParts) != 2 {
		return "", 0, errors.New("invalid header")
	}
	jsonLength, err = strconv.Atoi(headerParts[1])
	if err != nil {
		return "", 0, fmt.Errorf("could not parse length in header: %q", header)
	}
	if jsonLength < 1 || jsonLength > maxSocketJSONLength {
		return "", 0, fmt.Errorf("invalid json length in header: %q", header)
	}
	return Route(headerParts[0]), jsonLength, nil
}

func (h *Socket) execute(ctx context.Context, route Route, jsonBytes []byte) (reply []byte) {
	h.l.Debug("incoming json buffer", zap.Int("length", len(jsonBytes)))

	if route == RouteGetRepo {
		var b bytes.Buffer
		if err := h.repo.WriteRepoBytes(ctx, &b); err != nil {
			h.l.Error("failed to write repo", zap.Error(err))
			reply, _ = h.exec.encodeReply(responses.NewError(ErrorCodeAPI, "internal error "+err.Error()))
			return reply
		}
		return b.Bytes()
	}

	reply, handlingError := h.exec.handleRequest(ctx, route, jsonBytes, sourceSocketServer)
	if handlingError != nil {
		h.l.Error("socketServer.execute failed", zap.Error(handlingError))
	}
	return reply
}

func (h *Socket) writeResponse(conn net.Conn, reply []byte) {
	headerBytes := []byte(strconv.Itoa(len(reply)))
	reply = append(headerBytes, reply...)
	h.l.Debug("replying", zap.Int("length", len(reply)))
	n, writeError := conn.Write(reply)
	if writeError != nil {
		h.l.Error("socketServer.writeResponse: could not write reply", zap.Error(writeError))
		return
	}
	if n < len(reply) {
		h.l.Error("socketServer.writeResponse: write too short",
			zap.Int("got", n),
			zap.Int("expected", len(reply)),
		)
		return
	}
	h.l.Debug("replied. waiting for next request on open connection")
}
