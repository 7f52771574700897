package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/foomo/menuserver/pkg/handler"
	"github.com/pkg/errors"
)

// maxHeaderLength digits of a reply length
const maxHeaderLength = 20

type socketTransport struct {
	connPool *connectionPool
}

// NewSocketTransport talks to a socket server through a pool of connectionPoolSize
// connections, callers wait up to waitTimeout for a free connection
func NewSocketTransport(addr string, connectionPoolSize int, waitTimeout time.Duration) Transport {
	return &socketTransport{
		connPool: newConnectionPool(addr, connectionPoolSize, waitTimeout),
	}
}

func (st *socketTransport) Close() {
	st.connPool.drain()
}

func (st *socketTransport) Call(ctx context.Context, route handler.Route, request interface{}, response interface{}) error {
	jsonBytes, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "could not marshal request")
	}
	conn, err := st.connPool.get(ctx)
	if err != nil {
		return err
	}

	responseBytes, err := st.roundTrip(ctx, conn, route, jsonBytes)
	st.connPool.put(conn, err)
	if err != nil {
		return err
	}
	return decodeReply(responseBytes, response)
}

func (st *socketTransport) roundTrip(ctx context.Context, conn net.Conn, route handler.Route, jsonBytes []byte) ([]byte, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	// write header result will be like handler:2{}
	request := append([]byte(fmt.Sprintf("%s:%d", route, len(jsonBytes))), jsonBytes...)
	if _, err := conn.Write(request); err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}

	// read response length until the json starts
	reader := bufio.NewReaderSize(conn, 1)
	header := make([]byte, 0, maxHeaderLength)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return nil, errors.Wrap(err, "an error occurred while reading the response")
		}
		if b == '{' {
			break
		}
		if len(header) == maxHeaderLength {
			return nil, errors.New("response header too long")
		}
		header = append(header, b)
	}
	responseLength, err := strconv.Atoi(string(header))
	if err != nil || responseLength < 1 {
		return nil, errors.Errorf("could not read response length: %q", string(header))
	}

	responseBytes := make([]byte, responseLength)
	responseBytes[0] = '{'
	if _, err := io.ReadFull(reader, responseBytes[1:]); err != nil {
		return nil, errors.Wrap(err, "an error occurred while reading the response")
	}
	return responseBytes, nil
}
