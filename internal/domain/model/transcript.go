package model

import (
	"fmt"
	"strings"
)

// Segment is a single transcript snippet positioned on the video timeline.
// Every transcript stored in or returned from this service uses this shape.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End returns the timeline instant at which the segment finishes.
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

// VideoMetadata holds the oEmbed metadata YouTube publishes for a video.
type VideoMetadata struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	Type         string `json:"type"`
	Height       int    `json:"height"`
	Width        int    `json:"width"`
	Version      string `json:"version"`
	ProviderName string `json:"provider_name"`
	ProviderURL  string `json:"provider_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// PlainText joins all segment texts into a single caption string.
func PlainText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

// Timestamped renders each segment as "m:ss - text".
func Timestamped(segments []Segment) []string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf("%s - %s", FormatTimestamp(seg.Start), seg.Text))
	}
	return lines
}

// FormatTimestamp renders a timeline offset in seconds as "m:ss".
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
