package usecase

import (
	"context"

	"github.com/ytkit/yttools/internal/domain/model"
)

// mockTranscriptFetcher provides a configurable mock for TranscriptFetcher.
type mockTranscriptFetcher struct {
	fetchFn           func(ctx context.Context, videoID string, languages []string) ([]model.Segment, error)
	fetchTranslatedFn func(ctx context.Context, videoID string, sourceLangs []string, targetLang string) ([]model.Segment, error)

	fetchCalls           int
	fetchTranslatedCalls int
}

func (m *mockTranscriptFetcher) FetchTranscript(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
	m.fetchCalls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, videoID, languages)
	}
	return nil, nil
}

func (m *mockTranscriptFetcher) FetchTranslatedTranscript(ctx context.Context, videoID string, sourceLangs []string, targetLang string) ([]model.Segment, error) {
	m.fetchTranslatedCalls++
	if m.fetchTranslatedFn != nil {
		return m.fetchTranslatedFn(ctx, videoID, sourceLangs, targetLang)
	}
	return nil, nil
}

// mockMetadataFetcher provides a configurable mock for MetadataFetcher.
type mockMetadataFetcher struct {
	fetchMetadataFn func(ctx context.Context, videoID string) (*model.VideoMetadata, error)

	fetchMetadataCalls int
}

func (m *mockMetadataFetcher) FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	m.fetchMetadataCalls++
	if m.fetchMetadataFn != nil {
		return m.fetchMetadataFn(ctx, videoID)
	}
	return &model.VideoMetadata{}, nil
}
