// Package youtube implements the upstream fetchers against YouTube's public
// endpoints: oEmbed for metadata and the caption tracks advertised on the
// watch page for transcripts.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ytkit/yttools/internal/domain/model"
	"github.com/ytkit/yttools/internal/domain/repository"
	"github.com/ytkit/yttools/internal/infrastructure/metrics"
)

const defaultBaseURL = "https://www.youtube.com"

// ClientConfig holds configuration for the YouTube client.
type ClientConfig struct {
	// Timeout bounds each upstream round-trip.
	Timeout time.Duration

	// UserAgent is sent on every request. YouTube serves a reduced watch
	// page without a browser-like agent.
	UserAgent string

	// BaseURL overrides the YouTube origin, used by tests.
	BaseURL string
}

// Client fetches transcripts and metadata from YouTube. It implements
// repository.TranscriptFetcher and repository.MetadataFetcher.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a YouTube client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}
}

// FetchMetadata returns the oEmbed metadata for a video.
func (c *Client) FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	endpoint := fmt.Sprintf("%s/oembed?format=json&url=%s",
		c.baseURL,
		url.QueryEscape("https://www.youtube.com/watch?v="+videoID),
	)

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamOEmbed, metrics.UpstreamStatusError).Inc()
		return nil, fmt.Errorf("oembed request: %w: %v", repository.ErrUpstream, err)
	}
	switch {
	case status == http.StatusNotFound, status == http.StatusUnauthorized, status == http.StatusForbidden:
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamOEmbed, metrics.UpstreamStatusError).Inc()
		return nil, fmt.Errorf("video %s: %w", videoID, repository.ErrVideoNotFound)
	case status != http.StatusOK:
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamOEmbed, metrics.UpstreamStatusError).Inc()
		return nil, fmt.Errorf("oembed status %d: %w", status, repository.ErrUpstream)
	}

	var metadata model.VideoMetadata
	if err := json.Unmarshal(body, &metadata); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamOEmbed, metrics.UpstreamStatusError).Inc()
		return nil, fmt.Errorf("decode oembed response: %w", err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamOEmbed, metrics.UpstreamStatusSuccess).Inc()
	return &metadata, nil
}

// FetchTranscript returns the transcript in the first available of the
// preferred languages. Manually created tracks are preferred over
// auto-generated ones for the same language.
func (c *Client) FetchTranscript(ctx context.Context, videoID string, languages []string) ([]model.Segment, error) {
	tracks, err := c.captionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track := selectTrack(tracks, languages)
	if track == nil {
		return nil, fmt.Errorf("video %s, languages %v: %w", videoID, languages, repository.ErrNoTranscript)
	}

	return c.fetchTrack(ctx, track.BaseURL, "")
}

// FetchTranslatedTranscript returns the transcript translated to targetLang.
// The source track is chosen from sourceLangs when given, otherwise the
// first translatable track is used.
func (c *Client) FetchTranslatedTranscript(ctx context.Context, videoID string, sourceLangs []string, targetLang string) ([]model.Segment, error) {
	tracks, err := c.captionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	var source *captionTrack
	if len(sourceLangs) > 0 {
		source = selectTrack(tracks, sourceLangs)
	}
	if source == nil {
		for i := range tracks {
			if tracks[i].IsTranslatable {
				source = &tracks[i]
				break
			}
		}
	}
	if source == nil {
		return nil, fmt.Errorf("video %s: %w", videoID, repository.ErrTranslationUnavailable)
	}
	if !source.IsTranslatable {
		return nil, fmt.Errorf("track %s of video %s: %w",
			source.LanguageCode, videoID, repository.ErrTranslationUnavailable)
	}

	return c.fetchTrack(ctx, source.BaseURL, targetLang)
}

// captionTrack mirrors the track descriptors embedded in the watch page.
type captionTrack struct {
	BaseURL        string `json:"baseUrl"`
	LanguageCode   string `json:"languageCode"`
	Kind           string `json:"kind"`
	IsTranslatable bool   `json:"isTranslatable"`
}

const captionTracksMarker = `"captionTracks":`

// captionTracks scrapes the caption track list from the video's watch page.
func (c *Client) captionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	body, status, err := c.get(ctx, c.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamWatch, metrics.UpstreamStatusError).Inc()
		return nil, fmt.Errorf("watch page request: %w: %v", repository.ErrUpstream, err)
	}
	if status != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamWatch, metrics.UpstreamStatusError).Inc()
		return nil, fmt.Errorf("watch page status %d: %w", status, repository.ErrUpstream)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamWatch, metrics.UpstreamStatusSuccess).Inc()

	page := string(body)
	idx := strings.Index(page, captionTracksMarker)
	if idx < 0 {
		return nil, fmt.Errorf("video %s has no caption tracks: %w", videoID, repository.ErrNoTranscript)
	}

	// The marker is followed by a JSON array; the decoder stops at its end.
	dec := json.NewDecoder(strings.NewReader(page[idx+len(captionTracksMarker):]))
	var tracks []captionTrack
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks for %s: %w", videoID, err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("video %s has no caption tracks: %w", videoID, repository.ErrNoTranscript)
	}

	c.logger.Debug("caption tracks found", "video_id", videoID, "tracks", len(tracks))
	return tracks, nil
}

// selectTrack picks the first track matching the preferred languages in
// order, preferring manually created tracks over auto-generated ("asr")
// ones. Returns nil when no language matches.
func selectTrack(tracks []captionTrack, languages []string) *captionTrack {
	for _, lang := range languages {
		var generated *captionTrack
		for i := range tracks {
			if !strings.EqualFold(tracks[i].LanguageCode, lang) {
				continue
			}
			if tracks[i].Kind != "asr" {
				return &tracks[i]
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return generated
		}
	}
	return nil
}

// json3 timedtext payload shapes.
type json3Response struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	StartMs    int64      `json:"tStartMs"`
	DurationMs int64      `json:"dDurationMs"`
	Segs       []json3Seg `json:"segs"`
}

type json3Seg struct {
	UTF8 string `json:"utf8"`
}

// fetchTrack downloads a caption track in json3 format and converts it to
// segments. A non-empty tlang asks YouTube to translate the track.
func (c *Client) fetchTrack(ctx context.Context, baseURL, tlang string) ([]model.Segment, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse track url: %w", err)
	}
	q := u.Query()
	q.Set("fmt", "json3")
	if tlang != "" {
		q.Set("tlang", tlang)
	}
	u.RawQuery = q.Encode()

	body, status, err := c.get(ctx, u.String())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamTimedtext, metrics.UpstreamStatusError).Inc()
		return nil, fmt.Errorf("timedtext request: %w: %v", repository.ErrUpstream, err)
	}
	if status != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamTimedtext, metrics.UpstreamStatusError).Inc()
		return nil, fmt.Errorf("timedtext status %d: %w", status, repository.ErrUpstream)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamTimedtext, metrics.UpstreamStatusSuccess).Inc()

	var payload json3Response
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode timedtext response: %w", err)
	}

	segments := make([]model.Segment, 0, len(payload.Events))
	for _, event := range payload.Events {
		var sb strings.Builder
		for _, seg := range event.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		segments = append(segments, model.Segment{
			Text:     text,
			Start:    float64(event.StartMs) / 1000,
			Duration: float64(event.DurationMs) / 1000,
		})
	}
	return segments, nil
}

// get performs a GET with the configured user agent and returns the body and
// status code.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept-Language", "en-US,en")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
