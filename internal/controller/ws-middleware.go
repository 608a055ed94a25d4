package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/wsrouter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func (c controller) wsRecoverMw(next wsrouter.HandlerFunc[*wsConn, json.RawMessage]) wsrouter.HandlerFunc[*wsConn, json.RawMessage] {
	return func(ctx context.Context, conn *wsConn, input json.RawMessage) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				c.logger.ErrorContext(ctx, "panic in ws handler", "panic", rec)
				err = fmt.Errorf("%w: %v", errPanic, rec)
			}
		}()

		return next(ctx, conn, input)
	}
}

func (c controller) wsRequestIdMw(next wsrouter.HandlerFunc[*wsConn, json.RawMessage]) wsrouter.HandlerFunc[*wsConn, json.RawMessage] {
	return func(ctx context.Context, conn *wsConn, input json.RawMessage) error {
		ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", c.generateTimeBasedId()))
		return next(ctx, conn, input)
	}
}

func (c controller) wsLoggingMw(next wsrouter.HandlerFunc[*wsConn, json.RawMessage]) wsrouter.HandlerFunc[*wsConn, json.RawMessage] {
	return func(ctx context.Context, conn *wsConn, input json.RawMessage) error {
		messageType := wsrouter.GetMessageTypeFromCtx(ctx)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", messageType))
		c.logger.DebugContext(ctx, "ws message")

		start := time.Now()
		err := next(ctx, conn, input)
		frameDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("type", messageType)))

		return err
	}
}
