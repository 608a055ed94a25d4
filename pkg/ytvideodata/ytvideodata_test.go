package ytvideodata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient(time.Second)
	c.oembedBase = srv.URL + "/oembed"
	c.pageBase = srv.URL + "/page/"
	return c
}

func TestGetWithEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oembed", r.URL.Path)
		assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Never Gonna","author_name":"Rick","thumbnail_url":"https://i.ytimg.com/x.jpg"}`))
	}))
	defer srv.Close()

	data, err := newTestClient(srv).Get(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna", data.Title)
	assert.Equal(t, "Rick", data.AuthorName)
	assert.Equal(t, "https://i.ytimg.com/x.jpg", data.ThumbnailUrl)
}

func TestGetFallsBackToPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oembed" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "/page/dQw4w9WgXcQ", r.URL.Path)
		_, _ = w.Write([]byte(`<html><head><title>Page Title</title></head><body>` +
			`<span itemprop="author"><link itemprop="name" content="Channel"></span></body></html>`))
	}))
	defer srv.Close()

	data, err := newTestClient(srv).Get(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Page Title", data.Title)
	assert.Equal(t, "Channel", data.AuthorName)
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", data.ThumbnailUrl)
}

func TestGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Get(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}
