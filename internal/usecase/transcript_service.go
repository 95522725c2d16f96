package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ytkit/yttools/internal/domain/model"
	"github.com/ytkit/yttools/internal/domain/repository"
	"github.com/ytkit/yttools/internal/infrastructure/cache"
)

var (
	// ErrTooManyVideos is returned when a batch request exceeds the limit.
	ErrTooManyVideos = errors.New("too many videos in batch request")

	// ErrEmptyQuery is returned when a transcript search has no query.
	ErrEmptyQuery = errors.New("search query cannot be empty")
)

// maxBatchSize bounds a single batch captions request.
const maxBatchSize = 10

// translationMarker separates source and target languages in cache keys for
// translated transcripts, e.g. "en->>fr".
const translationMarker = "->>"

// BatchResult is the per-video outcome of a batch captions request.
type BatchResult struct {
	Caption string `json:"caption,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SearchMatch is one transcript segment matching a search query.
type SearchMatch struct {
	Text          string   `json:"text"`
	Start         float64  `json:"start"`
	Timestamp     string   `json:"timestamp"`
	Index         int      `json:"index"`
	ContextBefore []string `json:"context_before,omitempty"`
	ContextAfter  []string `json:"context_after,omitempty"`
}

// Chapter is a detected chapter boundary in a transcript.
type Chapter struct {
	Number       int     `json:"chapter_number"`
	Timestamp    string  `json:"timestamp"`
	StartSeconds float64 `json:"start_seconds"`
	SegmentCount int     `json:"segment_count"`
	Preview      string  `json:"preview"`
}

// ChapterOptions tunes the chapter detection heuristic.
type ChapterOptions struct {
	// MinGapSeconds is the silence gap that suggests a chapter break.
	MinGapSeconds float64
	// MinSegments is the minimum number of segments per chapter.
	MinSegments int
}

// TranscriptService defines the transcript and metadata business logic.
type TranscriptService interface {
	// GetTranscript returns the transcript segments for a video. When
	// translateTo is set the transcript is translated to that language.
	GetTranscript(ctx context.Context, videoID string, languages []string, translateTo string) ([]model.Segment, error)

	// GetCaptions returns the transcript as one plain-text string.
	GetCaptions(ctx context.Context, videoID string, languages []string, translateTo string) (string, error)

	// GetTimestamps returns the transcript as "m:ss - text" lines.
	GetTimestamps(ctx context.Context, videoID string, languages []string, translateTo string) ([]string, error)

	// GetMetadata returns the video's public metadata.
	GetMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error)

	// BatchCaptions fetches captions for up to 10 videos in parallel,
	// isolating per-video failures in the result map.
	BatchCaptions(ctx context.Context, videoIDs []string, languages []string, translateTo string) (map[string]BatchResult, error)

	// SearchTranscript returns segments whose text contains the query,
	// case-insensitively, with optional surrounding context lines.
	SearchTranscript(ctx context.Context, videoID, query string, languages []string, contextLines int) ([]SearchMatch, error)

	// DetectChapters finds chapter boundaries using silence gaps.
	DetectChapters(ctx context.Context, videoID string, languages []string, translateTo string, opts ChapterOptions) ([]Chapter, error)
}

// transcriptService implements TranscriptService with a cache-aside layer in
// front of the upstream fetchers. There is deliberately no request
// coalescing: concurrent misses on the same key each fetch upstream, and the
// last write wins.
type transcriptService struct {
	transcripts repository.TranscriptFetcher
	metadata    repository.MetadataFetcher
	cache       *cache.TranscriptCache
	logger      *slog.Logger
}

// NewTranscriptService creates a TranscriptService.
func NewTranscriptService(
	transcripts repository.TranscriptFetcher,
	metadata repository.MetadataFetcher,
	transcriptCache *cache.TranscriptCache,
	logger *slog.Logger,
) TranscriptService {
	return &transcriptService{
		transcripts: transcripts,
		metadata:    metadata,
		cache:       transcriptCache,
		logger:      logger,
	}
}

func (s *transcriptService) GetTranscript(ctx context.Context, videoID string, languages []string, translateTo string) ([]model.Segment, error) {
	langs := languages
	if len(langs) == 0 {
		langs = []string{"en"}
	}

	// Explicit translation requests cache under a translation-pair key so
	// they never collide with untranslated transcripts.
	if translateTo != "" {
		cacheLangs := []string{langs[0] + translationMarker + translateTo}
		if segments, ok := s.cache.GetTranscript(ctx, videoID, cacheLangs); ok {
			return segments, nil
		}
		segments, err := s.transcripts.FetchTranslatedTranscript(ctx, videoID, langs, translateTo)
		if err != nil {
			return nil, err
		}
		s.cache.SetTranscript(ctx, videoID, segments, cacheLangs)
		return segments, nil
	}

	if segments, ok := s.cache.GetTranscript(ctx, videoID, langs); ok {
		return segments, nil
	}

	segments, err := s.transcripts.FetchTranscript(ctx, videoID, langs)
	if err == nil {
		s.cache.SetTranscript(ctx, videoID, segments, langs)
		return segments, nil
	}

	// No track in the requested languages. Fall back to translating any
	// available track into the first requested language, cached under the
	// "auto" translation-pair key.
	target := langs[0]
	autoLangs := []string{"auto" + translationMarker + target}
	if segments, ok := s.cache.GetTranscript(ctx, videoID, autoLangs); ok {
		return segments, nil
	}

	translated, terr := s.transcripts.FetchTranslatedTranscript(ctx, videoID, nil, target)
	if terr != nil {
		// The direct-fetch error describes the caller's request better.
		return nil, err
	}
	s.logger.Info("transcript served via auto-translation",
		slog.String("video_id", videoID),
		slog.String("target", target),
	)
	s.cache.SetTranscript(ctx, videoID, translated, autoLangs)
	return translated, nil
}

func (s *transcriptService) GetCaptions(ctx context.Context, videoID string, languages []string, translateTo string) (string, error) {
	segments, err := s.GetTranscript(ctx, videoID, languages, translateTo)
	if err != nil {
		return "", err
	}
	return model.PlainText(segments), nil
}

func (s *transcriptService) GetTimestamps(ctx context.Context, videoID string, languages []string, translateTo string) ([]string, error) {
	segments, err := s.GetTranscript(ctx, videoID, languages, translateTo)
	if err != nil {
		return nil, err
	}
	return model.Timestamped(segments), nil
}

func (s *transcriptService) GetMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	if metadata, ok := s.cache.GetMetadata(ctx, videoID); ok {
		return metadata, nil
	}

	metadata, err := s.metadata.FetchMetadata(ctx, videoID)
	if err != nil {
		return nil, err
	}

	s.cache.SetMetadata(ctx, videoID, metadata)
	return metadata, nil
}

func (s *transcriptService) BatchCaptions(ctx context.Context, videoIDs []string, languages []string, translateTo string) (map[string]BatchResult, error) {
	if len(videoIDs) == 0 {
		return map[string]BatchResult{}, nil
	}
	if len(videoIDs) > maxBatchSize {
		return nil, ErrTooManyVideos
	}

	var mu sync.Mutex
	results := make(map[string]BatchResult, len(videoIDs))

	g, gctx := errgroup.WithContext(ctx)
	for _, videoID := range videoIDs {
		videoID := videoID
		g.Go(func() error {
			caption, err := s.GetCaptions(gctx, videoID, languages, translateTo)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[videoID] = BatchResult{Error: err.Error()}
			} else {
				results[videoID] = BatchResult{Caption: caption}
			}
			// Per-video failures are part of the result, never the group error.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *transcriptService) SearchTranscript(ctx context.Context, videoID, query string, languages []string, contextLines int) ([]SearchMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	segments, err := s.GetTranscript(ctx, videoID, languages, "")
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := []SearchMatch{}
	for i, seg := range segments {
		if !strings.Contains(strings.ToLower(seg.Text), needle) {
			continue
		}

		match := SearchMatch{
			Text:      seg.Text,
			Start:     seg.Start,
			Timestamp: model.FormatTimestamp(seg.Start),
			Index:     i,
		}
		if contextLines > 0 {
			for j := max(0, i-contextLines); j < i; j++ {
				match.ContextBefore = append(match.ContextBefore, segments[j].Text)
			}
			for j := i + 1; j <= min(len(segments)-1, i+contextLines); j++ {
				match.ContextAfter = append(match.ContextAfter, segments[j].Text)
			}
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (s *transcriptService) DetectChapters(ctx context.Context, videoID string, languages []string, translateTo string, opts ChapterOptions) ([]Chapter, error) {
	segments, err := s.GetTranscript(ctx, videoID, languages, translateTo)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return []Chapter{}, nil
	}

	chapters := []Chapter{}
	chapterStart := 0
	count := 0

	flush := func() {
		first := segments[chapterStart]
		chapters = append(chapters, Chapter{
			Number:       len(chapters) + 1,
			Timestamp:    model.FormatTimestamp(first.Start),
			StartSeconds: first.Start,
			SegmentCount: count,
			Preview:      preview(first.Text),
		})
	}

	for i := range segments {
		count++
		if i == len(segments)-1 {
			break
		}
		gap := segments[i+1].Start - segments[i].End()
		if gap >= opts.MinGapSeconds && count >= opts.MinSegments {
			flush()
			chapterStart = i + 1
			count = 0
		}
	}
	if count > 0 {
		flush()
	}
	return chapters, nil
}

// previewLength bounds chapter preview text.
const previewLength = 50

// preview collapses whitespace and truncates text for chapter previews.
func preview(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if len(collapsed) <= previewLength {
		return collapsed
	}
	return collapsed[:previewLength] + "..."
}
