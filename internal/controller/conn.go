package controller

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/domain"
)

const (
	writeWait             = 10 * time.Second
	defaultSendBuffer     = 64
	defaultMaxMessageSize = 64 * 1024
)

var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// wsConn wraps a websocket with a buffered outbound queue drained by writePump.
type wsConn struct {
	id        string
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	logger    *slog.Logger
}

func newWsConn(ws *websocket.Conn, sendBuffer int, logger *slog.Logger) *wsConn {
	return &wsConn{
		id:     uuid.NewString(),
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *wsConn) Id() string {
	return c.id
}

func (c *wsConn) IsOpen() bool {
	return !c.closed.Load()
}

// Send never blocks. A peer that cannot keep up with its queue is terminated.
func (c *wsConn) Send(ev *domain.Event) error {
	if c.closed.Load() {
		return ErrConnClosed
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnClosed
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, terminating", "conn_id", c.id)
		c.Terminate()
		return ErrSendBufferFull
	}
}

// Close stops accepting events. Queued events are flushed before the close frame.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
	})

	return nil
}

// Terminate drops the socket without flushing.
func (c *wsConn) Terminate() error {
	c.Close()
	return c.ws.Close()
}

func (c *wsConn) Ping() error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *wsConn) write(data []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) writePump() {
	defer c.ws.Close()

	for {
		select {
		case data := <-c.send:
			if err := c.write(data); err != nil {
				c.logger.Debug("failed to write message", "conn_id", c.id, "error", err)
				c.Terminate()
				return
			}
		case <-c.done:
			for {
				select {
				case data := <-c.send:
					if err := c.write(data); err != nil {
						return
					}
				default:
					c.ws.WriteControl(
						websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(writeWait),
					)
					return
				}
			}
		}
	}
}
