package client

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
)

var errPoolDrained = errors.New("connection pool has been drained, client is dead")

type connReturn struct {
	conn net.Conn
	err  error
}

type connectionPool struct {
	addr           string
	chanConnGet    chan chan net.Conn
	chanConnReturn chan connReturn
	chanDrainPool  chan struct{}
	done           chan struct{}
}

func newConnectionPool(addr string, connectionPoolSize int, waitTimeout time.Duration) *connectionPool {
	connPool := &connectionPool{
		addr:           addr,
		chanConnGet:    make(chan chan net.Conn),
		chanConnReturn: make(chan connReturn),
		chanDrainPool:  make(chan struct{}),
		done:           make(chan struct{}),
	}
	go connPool.run(connectionPoolSize, waitTimeout)
	return connPool
}

// get waits for a free connection
func (c *connectionPool) get(ctx context.Context) (net.Conn, error) {
	chanConn := make(chan net.Conn, 1)
	select {
	case c.chanConnGet <- chanConn:
	case <-c.done:
		return nil, errPoolDrained
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case conn := <-chanConn:
		if conn == nil {
			return nil, errors.New("could not get a connection")
		}
		return conn, nil
	case <-ctx.Done():
		// the pool always answers, hand a late connection back
		go func() {
			if conn := <-chanConn; conn != nil {
				c.put(conn, nil)
			}
		}()
		return nil, ctx.Err()
	}
}

// put returns a connection, a connection with an error is closed and redialed
func (c *connectionPool) put(conn net.Conn, err error) {
	select {
	case c.chanConnReturn <- connReturn{conn: conn, err: err}:
	case <-c.done:
		_ = conn.Close()
	}
}

func (c *connectionPool) drain() {
	select {
	case c.chanDrainPool <- struct{}{}:
		<-c.done
	case <-c.done:
	}
}

func (c *connectionPool) run(connectionPoolSize int, waitTimeout time.Duration) {
	type poolEntry struct {
		busy bool
		conn net.Conn
	}
	type waitPoolEntry struct {
		entryTime time.Time
		chanConn  chan net.Conn
	}

	var (
		connectionPool = make([]*poolEntry, connectionPoolSize)
		waitPool       []*waitPoolEntry
		ticker         = time.NewTicker(waitTimeout)
		dialer         = &net.Dialer{Timeout: waitTimeout}
	)
	defer ticker.Stop()
	for i := range connectionPool {
		connectionPool[i] = &poolEntry{}
	}

RunLoop:
	for {
		select {
		case <-c.chanDrainPool:
			break RunLoop
		case <-ticker.C:
		case chanReturnNextConn := <-c.chanConnGet:
			waitPool = append(waitPool, &waitPoolEntry{
				chanConn:  chanReturnNextConn,
				entryTime: time.Now(),
			})
		case connReturn := <-c.chanConnReturn:
			for _, poolEntry := range connectionPool {
				if connReturn.conn == poolEntry.conn {
					poolEntry.busy = false
					if connReturn.err != nil {
						_ = poolEntry.conn.Close()
						poolEntry.conn = nil
					}
				}
			}
		}

		// redistribute available connections, dialing only for waiting callers
		for _, poolEntry := range connectionPool {
			if len(waitPool) == 0 {
				break
			}
			if poolEntry.busy {
				continue
			}
			if poolEntry.conn == nil {
				newConn, errDial := dialer.Dial("tcp", c.addr)
				if errDial != nil {
					continue
				}
				poolEntry.conn = newConn
			}
			poolEntry.busy = true
			waitPool[0].chanConn <- poolEntry.conn
			waitPool = waitPool[1:]
		}

		// waitpool cleanup
		now := time.Now()
		kept := waitPool[:0]
		for _, waitPoolEntry := range waitPool {
			if now.Sub(waitPoolEntry.entryTime) > waitTimeout {
				waitPoolEntry.chanConn <- nil
				continue
			}
			kept = append(kept, waitPoolEntry)
		}
		waitPool = kept
	}

	for _, waitPoolEntry := range waitPool {
		waitPoolEntry.chanConn <- nil
	}
	for _, poolEntry := range connectionPool {
		if poolEntry.conn != nil {
			_ = poolEntry.conn.Close()
		}
	}
	close(c.done)
}
