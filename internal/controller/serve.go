package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"golang.org/x/time/rate"
)

func (c controller) serveWs(w http.ResponseWriter, r *http.Request) {
	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	conn := newWsConn(ws, c.cfg.SendBuffer, c.logger)
	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("conn_id", conn.Id()))
	c.logger.InfoContext(ctx, "connection opened")
	activeConns.Add(ctx, 1)

	go conn.writePump()
	c.monitor.Track(conn)

	defer func() {
		c.monitor.Untrack(conn.Id())
		c.roomService.Disconnect(context.WithoutCancel(ctx), conn)
		conn.Terminate()
		activeConns.Add(ctx, -1)
		c.logger.InfoContext(ctx, "connection closed")
	}()

	ws.SetReadLimit(c.cfg.MaxMessageSize)
	ws.SetPongHandler(func(string) error {
		c.monitor.MarkAlive(conn.Id())
		return nil
	})

	var limiter *rate.Limiter
	if c.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.cfg.RateLimit), max(c.cfg.RateBurst, 1))
	}

	for {
		msgType, frame, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.InfoContext(ctx, "unexpected close", "error", err)
			}
			return
		}

		// Kicked, denied and closed connections are still drained until the peer goes away.
		if !conn.IsOpen() || msgType != websocket.TextMessage {
			continue
		}

		framesReceived.Add(ctx, 1)
		if limiter != nil && !limiter.Allow() {
			c.writeError(ctx, conn, errorOutput(msgRateLimited))
			continue
		}

		if err := c.wsRouter.Dispatch(ctx, conn, frame); err != nil {
			c.handleError(ctx, conn, err)
		}
	}
}
