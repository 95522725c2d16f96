package repository

import "errors"

var (
	// ErrVideoNotFound is returned when the upstream source does not know
	// the video, or the video is private or restricted.
	ErrVideoNotFound = errors.New("video not found")

	// ErrNoTranscript is returned when a video has no captions in any of the
	// requested languages.
	ErrNoTranscript = errors.New("no transcript available")

	// ErrTranslationUnavailable is returned when no caption track can be
	// translated to the requested target language.
	ErrTranslationUnavailable = errors.New("translation unavailable")

	// ErrUpstream is returned when the upstream source cannot be reached or
	// responds with an unexpected status.
	ErrUpstream = errors.New("upstream request failed")
)
