package handler

import (
	"net/http"

	"github.com/ytkit/yttools/internal/infrastructure/cache"
)

type CacheStatsResponse struct {
	Enabled    bool   `json:"enabled"`
	Backend    string `json:"backend"`
	Size       int    `json:"size"`
	MaxSize    int    `json:"max_size"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type CacheClearResponse struct {
	Message string `json:"message"`
	Size    int    `json:"size"`
}

type CacheCleanupResponse struct {
	Removed int `json:"removed"`
	Size    int `json:"size"`
}

// CacheHandler exposes cache diagnostics and administration.
type CacheHandler struct {
	cache *cache.TranscriptCache
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(transcriptCache *cache.TranscriptCache) *CacheHandler {
	return &CacheHandler{cache: transcriptCache}
}

// Stats handles GET /api/v1/youtube/cache/stats
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, CacheStatsResponse{
		Enabled:    h.cache.Enabled(),
		Backend:    h.cache.BackendName(),
		Size:       h.cache.Size(r.Context()),
		MaxSize:    h.cache.MaxSize(),
		TTLSeconds: int(h.cache.TTL().Seconds()),
	})
}

// Clear handles DELETE /api/v1/youtube/cache/clear
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.cache.Clear(r.Context())

	JSON(w, http.StatusOK, CacheClearResponse{
		Message: "Cache cleared successfully",
		Size:    h.cache.Size(r.Context()),
	})
}

// Cleanup handles POST /api/v1/youtube/cache/cleanup
func (h *CacheHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	removed := h.cache.CleanupExpired()

	JSON(w, http.StatusOK, CacheCleanupResponse{
		Removed: removed,
		Size:    h.cache.Size(r.Context()),
	})
}
