package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ytkit/yttools/internal/domain/repository"
	"github.com/ytkit/yttools/internal/usecase"
	"github.com/ytkit/yttools/internal/youtube"
)

// Chapter detection parameter bounds.
const (
	defaultMinGapSeconds = 3.0
	minGapSecondsFloor   = 1.0
	minGapSecondsCeil    = 30.0

	defaultMinSegments = 5
	minSegmentsFloor   = 3
	minSegmentsCeil    = 50
)

type CaptionsResponse struct {
	VideoID string `json:"video_id"`
	Caption string `json:"caption"`
}

type TimestampsResponse struct {
	VideoID    string   `json:"video_id"`
	Timestamps []string `json:"timestamps"`
}

type BatchCaptionsResponse struct {
	Results    map[string]usecase.BatchResult `json:"results"`
	Total      int                            `json:"total"`
	Successful int                            `json:"successful"`
	Failed     int                            `json:"failed"`
}

type SearchResponse struct {
	VideoID      string                `json:"video_id"`
	Query        string                `json:"query"`
	Matches      []usecase.SearchMatch `json:"matches"`
	TotalMatches int                   `json:"total_matches"`
}

type ChaptersResponse struct {
	VideoID         string            `json:"video_id"`
	Chapters        []usecase.Chapter `json:"chapters"`
	TotalChapters   int               `json:"total_chapters"`
	DetectionParams DetectionParams   `json:"detection_params"`
}

type DetectionParams struct {
	MinGapSeconds float64 `json:"min_gap_seconds"`
	MinSegments   int     `json:"min_segments"`
}

// YouTubeHandler handles transcript and metadata HTTP requests.
type YouTubeHandler struct {
	svc usecase.TranscriptService
}

// NewYouTubeHandler creates a new YouTubeHandler.
func NewYouTubeHandler(svc usecase.TranscriptService) *YouTubeHandler {
	return &YouTubeHandler{svc: svc}
}

// Metadata handles GET /api/v1/youtube/metadata
func (h *YouTubeHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDFromQuery(w, r)
	if !ok {
		return
	}

	metadata, err := h.svc.GetMetadata(r.Context(), videoID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, metadata)
}

// Captions handles GET /api/v1/youtube/captions
func (h *YouTubeHandler) Captions(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDFromQuery(w, r)
	if !ok {
		return
	}

	caption, err := h.svc.GetCaptions(r.Context(), videoID, languagesFromQuery(r), r.URL.Query().Get("translate_to"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, CaptionsResponse{
		VideoID: videoID,
		Caption: caption,
	})
}

// Timestamps handles GET /api/v1/youtube/timestamps
func (h *YouTubeHandler) Timestamps(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDFromQuery(w, r)
	if !ok {
		return
	}

	lines, err := h.svc.GetTimestamps(r.Context(), videoID, languagesFromQuery(r), r.URL.Query().Get("translate_to"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, TimestampsResponse{
		VideoID:    videoID,
		Timestamps: lines,
	})
}

// BatchCaptions handles GET /api/v1/youtube/captions/batch
func (h *YouTubeHandler) BatchCaptions(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("videos")
	if raw == "" {
		Error(w, http.StatusBadRequest, "invalid_request", "No video IDs provided")
		return
	}

	var videoIDs []string
	invalid := map[string]usecase.BatchResult{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if id := youtube.ExtractVideoID(item); id != "" {
			videoIDs = append(videoIDs, id)
		} else {
			invalid[item] = usecase.BatchResult{Error: "Invalid video URL/ID"}
		}
	}
	if len(videoIDs) == 0 && len(invalid) == 0 {
		Error(w, http.StatusBadRequest, "invalid_request", "No valid video IDs provided")
		return
	}

	results, err := h.svc.BatchCaptions(r.Context(), videoIDs, languagesFromQuery(r), r.URL.Query().Get("translate_to"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	successful := 0
	for _, result := range results {
		if result.Error == "" {
			successful++
		}
	}
	for key, result := range invalid {
		results[key] = result
	}

	JSON(w, http.StatusOK, BatchCaptionsResponse{
		Results:    results,
		Total:      len(results),
		Successful: successful,
		Failed:     len(results) - successful,
	})
}

// Search handles GET /api/v1/youtube/search
func (h *YouTubeHandler) Search(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDFromQuery(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("query")
	contextLines := intQuery(r, "context_lines", 0, 0, 5)

	matches, err := h.svc.SearchTranscript(r.Context(), videoID, query, languagesFromQuery(r), contextLines)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, SearchResponse{
		VideoID:      videoID,
		Query:        query,
		Matches:      matches,
		TotalMatches: len(matches),
	})
}

// Chapters handles GET /api/v1/youtube/chapters
func (h *YouTubeHandler) Chapters(w http.ResponseWriter, r *http.Request) {
	videoID, ok := videoIDFromQuery(w, r)
	if !ok {
		return
	}

	opts := usecase.ChapterOptions{
		MinGapSeconds: floatQuery(r, "min_gap_seconds", defaultMinGapSeconds, minGapSecondsFloor, minGapSecondsCeil),
		MinSegments:   intQuery(r, "min_segments", defaultMinSegments, minSegmentsFloor, minSegmentsCeil),
	}

	chapters, err := h.svc.DetectChapters(r.Context(), videoID, languagesFromQuery(r), r.URL.Query().Get("translate_to"), opts)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, ChaptersResponse{
		VideoID:       videoID,
		Chapters:      chapters,
		TotalChapters: len(chapters),
		DetectionParams: DetectionParams{
			MinGapSeconds: opts.MinGapSeconds,
			MinSegments:   opts.MinSegments,
		},
	})
}

func (h *YouTubeHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrVideoNotFound):
		Error(w, http.StatusNotFound, "video_not_found", "Video not found or restricted")
	case errors.Is(err, repository.ErrNoTranscript):
		Error(w, http.StatusNotFound, "no_transcript",
			"This video's captions are currently unavailable. The video may not have captions enabled, or may be private or restricted.")
	case errors.Is(err, repository.ErrTranslationUnavailable):
		Error(w, http.StatusBadRequest, "translation_unavailable", "No caption track can be translated to the requested language")
	case errors.Is(err, usecase.ErrTooManyVideos):
		Error(w, http.StatusBadRequest, "too_many_videos", "Maximum 10 videos per batch request")
	case errors.Is(err, usecase.ErrEmptyQuery):
		Error(w, http.StatusBadRequest, "invalid_query", "Search query is required")
	case errors.Is(err, repository.ErrUpstream):
		Error(w, http.StatusBadGateway, "upstream_error", "Failed to reach YouTube")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// videoIDFromQuery extracts and validates the "video" query parameter,
// writing a 400 response when it is missing or invalid.
func videoIDFromQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("video")
	if raw == "" {
		Error(w, http.StatusBadRequest, "invalid_request", "No video URL or ID provided")
		return "", false
	}
	videoID := youtube.ExtractVideoID(raw)
	if videoID == "" {
		Error(w, http.StatusBadRequest, "invalid_video", "Invalid YouTube URL or video ID")
		return "", false
	}
	return videoID, true
}

// languagesFromQuery reads preferred languages from repeated or
// comma-separated "languages" parameters.
func languagesFromQuery(r *http.Request) []string {
	var languages []string
	for _, value := range r.URL.Query()["languages"] {
		for _, lang := range strings.Split(value, ",") {
			if lang = strings.TrimSpace(lang); lang != "" {
				languages = append(languages, lang)
			}
		}
	}
	return languages
}

func intQuery(r *http.Request, name string, def, floor, ceil int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || value < floor || value > ceil {
		return def
	}
	return value
}

func floatQuery(r *http.Request, name string, def, floor, ceil float64) float64 {
	value, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil || value < floor || value > ceil {
		return def
	}
	return value
}
