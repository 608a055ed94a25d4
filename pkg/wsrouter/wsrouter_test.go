package wsrouter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConn struct {
	id string
}

type joinInput struct {
	RoomCode string `json:"roomCode"`
}

type emptyInput struct{}

func TestDispatch(t *testing.T) {
	r := New[*testConn]()

	var got joinInput
	var gotConn *testConn
	Handle(r, "join-room", func(ctx context.Context, conn *testConn, input joinInput) error {
		assert.Equal(t, "join-room", GetMessageTypeFromCtx(ctx))
		got = input
		gotConn = conn
		return nil
	})

	conn := &testConn{id: "c1"}
	err := r.Dispatch(context.Background(), conn, []byte(`{"type":"join-room","data":{"roomCode":"ABC123"}}`))
	require.NoError(t, err)
	assert.Equal(t, "ABC123", got.RoomCode)
	assert.Same(t, conn, gotConn)
}

func TestDispatchEmptyData(t *testing.T) {
	r := New[*testConn]()

	called := 0
	Handle(r, "approve-join", func(_ context.Context, _ *testConn, _ emptyInput) error {
		called++
		return nil
	})

	require.NoError(t, r.Dispatch(context.Background(), &testConn{}, []byte(`{"type":"approve-join"}`)))
	require.NoError(t, r.Dispatch(context.Background(), &testConn{}, []byte(`{"type":"approve-join","data":null}`)))
	require.NoError(t, r.Dispatch(context.Background(), &testConn{}, []byte(`{"type":"approve-join","data":{}}`)))
	assert.Equal(t, 3, called)
}

func TestDispatchErrors(t *testing.T) {
	r := New[*testConn]()
	Handle(r, "join-room", func(_ context.Context, _ *testConn, _ joinInput) error {
		return nil
	})

	err := r.Dispatch(context.Background(), &testConn{}, []byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedFrame)

	err = r.Dispatch(context.Background(), &testConn{}, []byte(`{"type":"explode","data":{}}`))
	assert.ErrorIs(t, err, ErrUnknownType)

	err = r.Dispatch(context.Background(), &testConn{}, []byte(`{"type":"join-room","data":{"roomCode":42}}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestMiddlewareOrder(t *testing.T) {
	r := New[*testConn]()

	var order []string
	mw := func(name string) Middleware[*testConn] {
		return func(next HandlerFunc[*testConn, json.RawMessage]) HandlerFunc[*testConn, json.RawMessage] {
			return func(ctx context.Context, conn *testConn, payload json.RawMessage) error {
				order = append(order, name)
				return next(ctx, conn, payload)
			}
		}
	}
	r.Use(mw("outer"), mw("inner"))
	Handle(r, "ping", func(_ context.Context, _ *testConn, _ emptyInput) error {
		order = append(order, "handler")
		return nil
	})

	require.NoError(t, r.Dispatch(context.Background(), &testConn{}, []byte(`{"type":"ping"}`)))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
