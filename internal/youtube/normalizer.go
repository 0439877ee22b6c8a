// Package youtube provides YouTube URL normalization and best-effort
// embeddability probing.
package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ResourceType distinguishes single videos from playlists.
type ResourceType string

// ResourceType constants.
const (
	TypeVideo    ResourceType = "video"
	TypePlaylist ResourceType = "playlist"
)

// Normalized is the canonical form of a recognized YouTube URL. Two surface
// URLs pointing at the same resource always normalize to the same EmbedURL,
// which is what makes deduplication by string equality correct.
type Normalized struct {
	EmbedURL string
	Type     ResourceType
}

// IsPlaylist reports whether the normalized resource is a playlist.
func (n Normalized) IsPlaylist() bool {
	return n.Type == TypePlaylist
}

// ErrUnrecognizedURL is returned for URLs that do not match any known
// YouTube video or playlist shape.
var ErrUnrecognizedURL = errors.New("not a recognized YouTube video or playlist URL")

var (
	videoIDRegex    = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	playlistIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{2,}$`)
)

var youtubeHosts = map[string]bool{
	"youtube.com":              true,
	"www.youtube.com":          true,
	"m.youtube.com":            true,
	"music.youtube.com":        true,
	"youtube-nocookie.com":     true,
	"www.youtube-nocookie.com": true,
}

// Normalize parses a YouTube video or playlist URL into its canonical embed
// form. A URL is treated as a playlist when it carries a list parameter or
// the caller hints hintPlaylist; otherwise it is a single video.
//
// Accepted shapes: watch URLs, youtu.be short links, /shorts/ links,
// existing /embed/ URLs and /playlist?list= URLs.
func Normalize(rawURL string, hintPlaylist bool) (Normalized, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Normalized{}, fmt.Errorf("%w: empty URL", ErrUnrecognizedURL)
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return Normalized{}, fmt.Errorf("%w: %s", ErrUnrecognizedURL, rawURL)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return Normalized{}, fmt.Errorf("%w: unsupported scheme %q", ErrUnrecognizedURL, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	listID := u.Query().Get("list")

	if host == "youtu.be" {
		videoID := strings.Trim(u.Path, "/")
		if hintPlaylist || listID != "" {
			return normalizePlaylist(listID)
		}
		return normalizeVideo(videoID)
	}

	if !youtubeHosts[host] {
		return Normalized{}, fmt.Errorf("%w: host %q", ErrUnrecognizedURL, host)
	}

	if hintPlaylist || listID != "" || strings.HasPrefix(u.Path, "/playlist") {
		return normalizePlaylist(listID)
	}

	switch {
	case u.Path == "/watch":
		return normalizeVideo(u.Query().Get("v"))
	case strings.HasPrefix(u.Path, "/embed/videoseries"):
		return normalizePlaylist(listID)
	case strings.HasPrefix(u.Path, "/embed/"):
		return normalizeVideo(strings.TrimPrefix(u.Path, "/embed/"))
	case strings.HasPrefix(u.Path, "/shorts/"):
		return normalizeVideo(strings.TrimPrefix(u.Path, "/shorts/"))
	case strings.HasPrefix(u.Path, "/live/"):
		return normalizeVideo(strings.TrimPrefix(u.Path, "/live/"))
	}

	return Normalized{}, fmt.Errorf("%w: %s", ErrUnrecognizedURL, rawURL)
}

func normalizeVideo(videoID string) (Normalized, error) {
	videoID = strings.Trim(videoID, "/")
	if !videoIDRegex.MatchString(videoID) {
		return Normalized{}, fmt.Errorf("%w: invalid video id %q", ErrUnrecognizedURL, videoID)
	}
	return Normalized{
		EmbedURL: "https://www.youtube.com/embed/" + videoID,
		Type:     TypeVideo,
	}, nil
}

func normalizePlaylist(listID string) (Normalized, error) {
	if !playlistIDRegex.MatchString(listID) {
		return Normalized{}, fmt.Errorf("%w: playlist URL must carry a list parameter", ErrUnrecognizedURL)
	}
	return Normalized{
		EmbedURL: "https://www.youtube.com/embed/videoseries?list=" + listID,
		Type:     TypePlaylist,
	}, nil
}
