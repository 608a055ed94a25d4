// Package wsrouter dispatches JSON frames of the form {"type": ..., "data": ...}
// to handlers registered per type, decoding data into the handler's input type.
package wsrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrUnknownType    = errors.New("unknown message type")
	ErrInvalidPayload = errors.New("invalid payload")
)

type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type HandlerFunc[C, T any] func(ctx context.Context, conn C, input T) error

type Middleware[C any] func(next HandlerFunc[C, json.RawMessage]) HandlerFunc[C, json.RawMessage]

type WSRouter[C any] struct {
	routes      map[string]HandlerFunc[C, json.RawMessage]
	middlewares []Middleware[C]
}

func New[C any]() *WSRouter[C] {
	return &WSRouter[C]{routes: make(map[string]HandlerFunc[C, json.RawMessage])}
}

// Use appends middlewares; the first registered one runs outermost.
func (r *WSRouter[C]) Use(middlewares ...Middleware[C]) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// Handle registers handler for messageType. Registering the same type twice replaces the handler.
func Handle[C, T any](r *WSRouter[C], messageType string, handler HandlerFunc[C, T]) {
	r.routes[messageType] = func(ctx context.Context, conn C, payload json.RawMessage) error {
		var input T
		if len(payload) != 0 && !bytes.Equal(payload, []byte("null")) {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
			}
		}

		return handler(ctx, conn, input)
	}
}

// Dispatch decodes one frame and runs the matching handler through the middleware chain.
func (r *WSRouter[C]) Dispatch(ctx context.Context, conn C, frame []byte) error {
	var msg message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	handler, exists := r.routes[msg.Type]
	if !exists {
		return fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	ctx = context.WithValue(ctx, messageTypeKey, msg.Type)
	return handler(ctx, conn, msg.Data)
}
