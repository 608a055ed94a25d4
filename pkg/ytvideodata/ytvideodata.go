// Package ytvideodata resolves YouTube video ids and fetches display metadata.
package ytvideodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrVideoNotEmbeddable = errors.New("video is not embeddable")
)

type VideoData struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

type Client struct {
	httpClient *http.Client
	oembedBase string
	pageBase   string
	sf         singleflight.Group
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		oembedBase: "https://www.youtube.com/oembed",
		pageBase:   "https://youtu.be/",
	}
}

// Get fetches metadata for videoId through oEmbed, falling back to the watch
// page when the video cannot be embedded. Concurrent lookups of one id share a request.
func (c *Client) Get(ctx context.Context, videoId string) (*VideoData, error) {
	v, err, _ := c.sf.Do(videoId, func() (any, error) {
		return c.fetch(ctx, videoId)
	})
	if err != nil {
		return nil, err
	}

	return v.(*VideoData), nil
}

func (c *Client) fetch(ctx context.Context, videoId string) (*VideoData, error) {
	videoData, err := c.getWithEmbed(ctx, videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = c.getFromPage(ctx, videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	return videoData, nil
}
