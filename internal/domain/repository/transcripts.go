package repository

import (
	"context"

	"github.com/ytkit/yttools/internal/domain/model"
)

// TranscriptFetcher defines the interface for retrieving caption tracks from
// the upstream captions source. Implementations are provided by the
// infrastructure layer and are expected to be slow and rate-limited; callers
// should sit a cache in front of them.
type TranscriptFetcher interface {
	// FetchTranscript returns the transcript in the first available of the
	// preferred languages. Returns ErrNoTranscript when the video has no
	// captions in any of them.
	FetchTranscript(ctx context.Context, videoID string, languages []string) ([]model.Segment, error)

	// FetchTranslatedTranscript returns the transcript translated to
	// targetLang. The source track is chosen from sourceLangs when given, or
	// any translatable track otherwise.
	// Returns ErrTranslationUnavailable when no suitable source track exists.
	FetchTranslatedTranscript(ctx context.Context, videoID string, sourceLangs []string, targetLang string) ([]model.Segment, error)
}

// MetadataFetcher defines the interface for retrieving video metadata from
// the upstream source.
type MetadataFetcher interface {
	// FetchMetadata returns the public metadata for a video.
	FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error)
}
