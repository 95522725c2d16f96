package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ytkit/yttools/internal/domain/model"
	"github.com/ytkit/yttools/internal/domain/repository"
	"github.com/ytkit/yttools/internal/infrastructure/cache"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCache(t *testing.T, enabled bool) *cache.TranscriptCache {
	t.Helper()
	return cache.New(context.Background(), cache.Options{
		Enabled: enabled,
		TTL:     time.Hour,
		MaxSize: 100,
		Backend: cache.BackendMemory,
	}, testLogger())
}

func newTestService(t *testing.T, transcripts *mockTranscriptFetcher, metadata *mockMetadataFetcher) TranscriptService {
	t.Helper()
	return NewTranscriptService(transcripts, metadata, testCache(t, true), testLogger())
}

func TestTranscriptService_GetTranscript_CachesResult(t *testing.T) {
	want := []model.Segment{{Text: "hi", Start: 0, Duration: 1}}
	fetcher := &mockTranscriptFetcher{
		fetchFn: func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
			return want, nil
		},
	}
	svc := newTestService(t, fetcher, &mockMetadataFetcher{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := svc.GetTranscript(ctx, "abc12345678", []string{"en"}, "")
		if err != nil {
			t.Fatalf("GetTranscript failed: %v", err)
		}
		if len(got) != 1 || got[0] != want[0] {
			t.Errorf("transcript = %+v, want %+v", got, want)
		}
	}

	if fetcher.fetchCalls != 1 {
		t.Errorf("upstream fetches = %d, want 1 (subsequent calls served from cache)", fetcher.fetchCalls)
	}
}

func TestTranscriptService_GetTranscript_DefaultLanguage(t *testing.T) {
	fetcher := &mockTranscriptFetcher{
		fetchFn: func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
			if len(languages) != 1 || languages[0] != "en" {
				t.Errorf("languages = %v, want [en]", languages)
			}
			return []model.Segment{{Text: "x"}}, nil
		},
	}
	svc := newTestService(t, fetcher, &mockMetadataFetcher{})

	if _, err := svc.GetTranscript(context.Background(), "abc12345678", nil, ""); err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}

	// A nil language list and an explicit ["en"] share one cache entry.
	if _, err := svc.GetTranscript(context.Background(), "abc12345678", []string{"en"}, ""); err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if fetcher.fetchCalls != 1 {
		t.Errorf("upstream fetches = %d, want 1", fetcher.fetchCalls)
	}
}

func TestTranscriptService_GetTranscript_ExplicitTranslation(t *testing.T) {
	fetcher := &mockTranscriptFetcher{
		fetchTranslatedFn: func(ctx context.Context, videoID string, sourceLangs []string, targetLang string) ([]model.Segment, error) {
			if targetLang != "fr" {
				t.Errorf("targetLang = %q, want fr", targetLang)
			}
			return []model.Segment{{Text: "bonjour"}}, nil
		},
	}
	svc := newTestService(t, fetcher, &mockMetadataFetcher{})
	ctx := context.Background()

	got, err := svc.GetTranscript(ctx, "abc12345678", []string{"en"}, "fr")
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if got[0].Text != "bonjour" {
		t.Errorf("Text = %q, want bonjour", got[0].Text)
	}
	if fetcher.fetchCalls != 0 {
		t.Error("explicit translation must not attempt a direct fetch")
	}

	// The translated transcript is cached under its own translation-pair
	// key, so an untranslated request still goes upstream.
	fetcher.fetchFn = func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
		return []model.Segment{{Text: "hello"}}, nil
	}
	plain, err := svc.GetTranscript(ctx, "abc12345678", []string{"en"}, "")
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if plain[0].Text != "hello" {
		t.Errorf("Text = %q, want hello (not the cached translation)", plain[0].Text)
	}

	// Repeating the translation request hits the cache.
	if _, err := svc.GetTranscript(ctx, "abc12345678", []string{"en"}, "fr"); err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if fetcher.fetchTranslatedCalls != 1 {
		t.Errorf("translated fetches = %d, want 1", fetcher.fetchTranslatedCalls)
	}
}

func TestTranscriptService_GetTranscript_AutoTranslationFallback(t *testing.T) {
	fetcher := &mockTranscriptFetcher{
		fetchFn: func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
			return nil, repository.ErrNoTranscript
		},
		fetchTranslatedFn: func(ctx context.Context, videoID string, sourceLangs []string, targetLang string) ([]model.Segment, error) {
			if sourceLangs != nil {
				t.Errorf("sourceLangs = %v, want nil (any translatable track)", sourceLangs)
			}
			if targetLang != "fr" {
				t.Errorf("targetLang = %q, want fr", targetLang)
			}
			return []model.Segment{{Text: "bonjour"}}, nil
		},
	}
	svc := newTestService(t, fetcher, &mockMetadataFetcher{})
	ctx := context.Background()

	got, err := svc.GetTranscript(ctx, "abc12345678", []string{"fr"}, "")
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if got[0].Text != "bonjour" {
		t.Errorf("Text = %q, want bonjour", got[0].Text)
	}

	// The fallback result is cached; a second request re-attempts the
	// direct fetch but serves the translation from cache.
	if _, err := svc.GetTranscript(ctx, "abc12345678", []string{"fr"}, ""); err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if fetcher.fetchTranslatedCalls != 1 {
		t.Errorf("translated fetches = %d, want 1", fetcher.fetchTranslatedCalls)
	}
}

func TestTranscriptService_GetTranscript_BothPathsFail(t *testing.T) {
	directErr := repository.ErrNoTranscript
	fetcher := &mockTranscriptFetcher{
		fetchFn: func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
			return nil, directErr
		},
		fetchTranslatedFn: func(ctx context.Context, videoID string, sourceLangs []string, targetLang string) ([]model.Segment, error) {
			return nil, repository.ErrTranslationUnavailable
		},
	}
	svc := newTestService(t, fetcher, &mockMetadataFetcher{})

	_, err := svc.GetTranscript(context.Background(), "abc12345678", []string{"en"}, "")
	if !errors.Is(err, directErr) {
		t.Errorf("err = %v, want the direct-fetch error", err)
	}
}

func TestTranscriptService_GetCaptions(t *testing.T) {
	fetcher := &mockTranscriptFetcher{
		fetchFn: func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
			return []model.Segment{
				{Text: "hello", Start: 0, Duration: 1},
				{Text: "world", Start: 1, Duration: 1},
			}, nil
		},
	}
	svc := newTestService(t, fetcher, &mockMetadataFetcher{})

	caption, err := svc.GetCaptions(context.Background(), "abc12345678", nil, "")
	if err != nil {
		t.Fatalf("GetCaptions failed: %v", err)
	}
	if caption != "hello world" {
		t.Errorf("caption = %q, want %q", caption, "hello world")
	}
}

func TestTranscriptService_GetTimestamps(t *testing.T) {
	fetcher := &mockTranscriptFetcher{
		fetchFn: func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
			return []model.Segment{
				{Text: "intro", Start: 0, Duration: 65},
				{Text: "topic", Start: 65, Duration: 10},
			}, nil
		},
	}
	svc := newTestService(t, fetcher, &mockMetadataFetcher{})

	lines, err := svc.GetTimestamps(context.Background(), "abc12345678", nil, "")
	if err != nil {
		t.Fatalf("GetTimestamps failed: %v", err)
	}
	want := []string{"0:00 - intro", "1:05 - topic"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTranscriptService_GetMetadata_CachesResult(t *testing.T) {
	metadata := &mockMetadataFetcher{
		fetchMetadataFn: func(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
			return &model.VideoMetadata{Title: "Test"}, nil
		},
	}
	svc := newTestService(t, &mockTranscriptFetcher{}, metadata)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := svc.GetMetadata(ctx, "abc12345678")
		if err != nil {
			t.Fatalf("GetMetadata failed: %v", err)
		}
		if got.Title != "Test" {
			t.Errorf("Title = %q, want Test", got.Title)
		}
	}
	if metadata.fetchMetadataCalls != 1 {
		t.Errorf("upstream fetches = %d, want 1", metadata.fetchMetadataCalls)
	}
}

func TestTranscriptService_GetMetadata_UpstreamError(t *testing.T) {
	metadata := &mockMetadataFetcher{
		fetchMetadataFn: func(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
			return nil, repository.ErrVideoNotFound
		},
	}
	svc := newTestService(t, &mockTranscriptFetcher{}, metadata)

	if _, err := svc.GetMetadata(context.Background(), "abc12345678"); !errors.Is(err, repository.ErrVideoNotFound) {
		t.Errorf("err = %v, want ErrVideoNotFound", err)
	}
}

func TestTranscriptService_DisabledCacheAlwaysFetches(t *testing.T) {
	fetcher := &mockTranscriptFetcher{
		fetchFn: func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
			return []model.Segment{{Text: "x"}}, nil
		},
	}
	svc := NewTranscriptService(fetcher, &mockMetadataFetcher{}, testCache(t, false), testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.GetTranscript(ctx, "abc12345678", []string{"en"}, ""); err != nil {
			t.Fatalf("GetTranscript failed: %v", err)
		}
	}
	if fetcher.fetchCalls != 3 {
		t.Errorf("upstream fetches = %d, want 3 with cache disabled", fetcher.fetchCalls)
	}
}

func TestTranscriptService_BatchCaptions(t *testing.T) {
	fetcher := &mockTranscriptFetcher{
		fetchFn: func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
			if videoID == "failing0000" {
				return nil, repository.ErrNoTranscript
			}
			return []model.Segment{{Text: "captions for " + videoID}}, nil
		},
	}
	svc := newTestService(t, fetcher, &mockMetadataFetcher{})

	results, err := svc.BatchCaptions(context.Background(), []string{"vid00000001", "vid00000002", "failing0000"}, nil, "")
	if err != nil {
		t.Fatalf("BatchCaptions failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results["vid00000001"].Caption != "captions for vid00000001" {
		t.Errorf("unexpected caption: %+v", results["vid00000001"])
	}
	if results["failing0000"].Error == "" {
		t.Error("expected per-video error for failing video")
	}
}

func TestTranscriptService_BatchCaptions_Limit(t *testing.T) {
	svc := newTestService(t, &mockTranscriptFetcher{}, &mockMetadataFetcher{})

	videoIDs := make([]string, maxBatchSize+1)
	for i := range videoIDs {
		videoIDs[i] = fmt.Sprintf("vid%08d", i)
	}

	if _, err := svc.BatchCaptions(context.Background(), videoIDs, nil, ""); !errors.Is(err, ErrTooManyVideos) {
		t.Errorf("err = %v, want ErrTooManyVideos", err)
	}
}

func TestTranscriptService_SearchTranscript(t *testing.T) {
	fetcher := &mockTranscriptFetcher{
		fetchFn: func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
			return []model.Segment{
				{Text: "welcome to the show", Start: 0, Duration: 2},
				{Text: "today we discuss Go", Start: 2, Duration: 2},
				{Text: "generics in go are neat", Start: 4, Duration: 2},
				{Text: "thanks for watching", Start: 66, Duration: 2},
			}, nil
		},
	}
	svc := newTestService(t, fetcher, &mockMetadataFetcher{})

	matches, err := svc.SearchTranscript(context.Background(), "abc12345678", "GO", nil, 1)
	if err != nil {
		t.Fatalf("SearchTranscript failed: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2 (case-insensitive)", len(matches))
	}
	if matches[0].Index != 1 || matches[0].Timestamp != "0:02" {
		t.Errorf("first match = %+v", matches[0])
	}
	if len(matches[0].ContextBefore) != 1 || matches[0].ContextBefore[0] != "welcome to the show" {
		t.Errorf("ContextBefore = %v", matches[0].ContextBefore)
	}
	if len(matches[0].ContextAfter) != 1 || matches[0].ContextAfter[0] != "generics in go are neat" {
		t.Errorf("ContextAfter = %v", matches[0].ContextAfter)
	}
}

func TestTranscriptService_SearchTranscript_EmptyQuery(t *testing.T) {
	svc := newTestService(t, &mockTranscriptFetcher{}, &mockMetadataFetcher{})

	if _, err := svc.SearchTranscript(context.Background(), "abc12345678", "  ", nil, 0); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestTranscriptService_DetectChapters(t *testing.T) {
	// Two groups of three segments separated by a 10 second silence gap.
	segments := []model.Segment{
		{Text: "part one begins", Start: 0, Duration: 2},
		{Text: "more of part one", Start: 2, Duration: 2},
		{Text: "part one ends", Start: 4, Duration: 2},
		{Text: "part two begins", Start: 16, Duration: 2},
		{Text: "more of part two", Start: 18, Duration: 2},
		{Text: "part two ends", Start: 20, Duration: 2},
	}
	fetcher := &mockTranscriptFetcher{
		fetchFn: func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
			return segments, nil
		},
	}
	svc := newTestService(t, fetcher, &mockMetadataFetcher{})

	chapters, err := svc.DetectChapters(context.Background(), "abc12345678", nil, "", ChapterOptions{
		MinGapSeconds: 3.0,
		MinSegments:   3,
	})
	if err != nil {
		t.Fatalf("DetectChapters failed: %v", err)
	}

	if len(chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(chapters))
	}
	if chapters[0].Number != 1 || chapters[0].StartSeconds != 0 || chapters[0].SegmentCount != 3 {
		t.Errorf("first chapter = %+v", chapters[0])
	}
	if chapters[1].Timestamp != "0:16" || chapters[1].Preview != "part two begins" {
		t.Errorf("second chapter = %+v", chapters[1])
	}
}

func TestTranscriptService_DetectChapters_NoGaps(t *testing.T) {
	fetcher := &mockTranscriptFetcher{
		fetchFn: func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
			return []model.Segment{
				{Text: "a", Start: 0, Duration: 1},
				{Text: "b", Start: 1, Duration: 1},
			}, nil
		},
	}
	svc := newTestService(t, fetcher, &mockMetadataFetcher{})

	chapters, err := svc.DetectChapters(context.Background(), "abc12345678", nil, "", ChapterOptions{
		MinGapSeconds: 3.0,
		MinSegments:   5,
	})
	if err != nil {
		t.Fatalf("DetectChapters failed: %v", err)
	}
	if len(chapters) != 1 {
		t.Fatalf("got %d chapters, want 1 (whole transcript)", len(chapters))
	}
	if chapters[0].SegmentCount != 2 {
		t.Errorf("SegmentCount = %d, want 2", chapters[0].SegmentCount)
	}
}
