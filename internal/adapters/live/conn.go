// Package live fans classified shots out to WebSocket spectators.
package live

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/openhoops/shotchart/pkg/logger"
	"github.com/openhoops/shotchart/pkg/metrics"
)

// Connection constants.
const (
	defaultSendBuffer = 64
	writeTimeout      = 5 * time.Second
)

// Conn is one spectator connection. Sends are buffered and dropped when
// the client cannot keep up; the feed must never stall the pipeline.
type Conn struct {
	ws     *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
	once   sync.Once
	id     string

	logger logger.Logger
}

func newConn(ws *websocket.Conn, id string, buffer int, l logger.Logger) *Conn {
	return &Conn{
		ws:     ws,
		sendCh: make(chan []byte, buffer),
		done:   make(chan struct{}),
		id:     id,
		logger: l,
	}
}

// send queues a frame without blocking.
func (c *Conn) send(data []byte) {
	select {
	case c.sendCh <- data:
	default:
		metrics.RecordLiveDrop()
		c.logger.Warn(context.Background(), "send buffer full, dropping frame",
			logger.String("conn", c.id),
		)
	}
}

// writeLoop pumps queued frames to the socket until the connection dies.
func (c *Conn) writeLoop(ctx context.Context) {
	for {
		select {
		case data := <-c.sendCh:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			c.close()
			return
		}
	}
}

func (c *Conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close(websocket.StatusNormalClosure, "")
	})
}

// Done is closed once the connection has shut down.
func (c *Conn) Done() <-chan struct{} { return c.done }
