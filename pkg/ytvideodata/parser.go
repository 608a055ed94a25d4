package ytvideodata

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidUrl = errors.New("not a youtube video url")

var videoIdRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var watchHosts = map[string]struct{}{
	"youtube.com":              {},
	"www.youtube.com":          {},
	"m.youtube.com":            {},
	"music.youtube.com":        {},
	"youtube-nocookie.com":     {},
	"www.youtube-nocookie.com": {},
}

// ParseVideoId extracts the 11 character video id from a YouTube url.
func ParseVideoId(rawUrl string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawUrl))
	if err != nil {
		return "", ErrInvalidUrl
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidUrl
	}

	host := strings.ToLower(u.Hostname())
	var id string
	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		id = strings.Trim(u.Path, "/")
	default:
		if _, ok := watchHosts[host]; !ok {
			return "", ErrInvalidUrl
		}
		if u.Path == "/watch" {
			id = u.Query().Get("v")
			break
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/", "/v/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				id, _, _ = strings.Cut(rest, "/")
				break
			}
		}
	}

	if !videoIdRe.MatchString(id) {
		return "", ErrInvalidUrl
	}

	return id, nil
}
