package room

import (
	"context"
	"errors"
	"sync"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/pkg/ytvideodata"
)

type fakeConn struct {
	id     string
	closed bool
	events []*domain.Event
	mu     sync.Mutex
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) Id() string { return c.id }

func (c *fakeConn) Send(ev *domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("conn closed")
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *fakeConn) isClosed() bool {
	return !c.IsOpen()
}

func (c *fakeConn) ofType(eventType string) []*domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*domain.Event
	for _, ev := range c.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.Type)
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

type fakeVideoData struct {
	data *ytvideodata.VideoData
	err  error
}

func (f fakeVideoData) Get(context.Context, string) (*ytvideodata.VideoData, error) {
	return f.data, f.err
}
