package youtube

import (
	"net/url"
	"strings"
)

// videoIDLength is the fixed length of a YouTube video ID.
const videoIDLength = 11

// ExtractVideoID extracts a YouTube video ID from a full URL or a raw ID.
// Supported inputs:
//   - a plain 11-character ID, e.g. "dQw4w9WgXcQ"
//   - watch URLs, e.g. "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
//   - short URLs, e.g. "https://youtu.be/dQw4w9WgXcQ"
//   - embed, /v/, /shorts/ and /live/ paths
//
// Returns "" when no ID can be extracted.
func ExtractVideoID(raw string) string {
	if isVideoID(raw) {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		return validateID(strings.TrimPrefix(u.Path, "/"))
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if u.Path == "/watch" {
			return validateID(u.Query().Get("v"))
		}
		for _, prefix := range []string{"/embed/", "/v/", "/shorts/", "/live/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				id, _, _ := strings.Cut(rest, "/")
				return validateID(id)
			}
		}
	}
	return ""
}

func validateID(id string) string {
	if isVideoID(id) {
		return id
	}
	return ""
}

func isVideoID(s string) bool {
	if len(s) != videoIDLength {
		return false
	}
	for _, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '_' || ch == '-':
		default:
			return false
		}
	}
	return true
}
