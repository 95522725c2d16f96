package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ytkit/yttools/internal/domain/model"
	"github.com/ytkit/yttools/internal/infrastructure/metrics"
)

// Backend selector values.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// defaultLanguage is the canonical language set used when the caller passes
// no languages. It matches the canonical form of ["en"], so a request for
// ["en"] and a request with no languages share one cache entry.
const defaultLanguage = "en"

// Options configures a TranscriptCache.
type Options struct {
	// Enabled is the global switch. A disabled cache constructs no backend
	// and turns every operation into a no-op/miss.
	Enabled bool

	// TTL is applied to every write.
	TTL time.Duration

	// MaxSize bounds the memory backend's entry count. Ignored by Redis.
	MaxSize int

	// Backend selects the storage variant: BackendMemory or BackendRedis.
	Backend string

	// RedisAddr is the connection target for the Redis backend.
	RedisAddr string
}

// TranscriptCache caches transcripts and video metadata in front of the
// slow, rate-limited upstream fetchers. It derives deterministic keys from
// semantic identifiers, applies one TTL to every write, and absorbs every
// cache-layer failure: callers can always proceed as if the cache were
// empty, just slower.
type TranscriptCache struct {
	backend     Backend
	backendName string
	enabled     bool
	ttl         time.Duration
	maxSize     int
	logger      *slog.Logger
}

// New constructs a TranscriptCache from options. When the Redis backend is
// requested but unreachable, construction falls back to the in-memory
// backend instead of failing; BackendName reports which variant is actually
// active. The fallback silently trades distributed semantics for per-process
// ones, so it is logged at warning level.
func New(ctx context.Context, opts Options, logger *slog.Logger) *TranscriptCache {
	c := &TranscriptCache{
		backendName: BackendMemory,
		enabled:     opts.Enabled,
		ttl:         opts.TTL,
		maxSize:     opts.MaxSize,
		logger:      logger,
	}
	if opts.Backend == BackendRedis {
		c.backendName = BackendRedis
	}

	if !opts.Enabled {
		return c
	}

	if opts.Backend == BackendRedis {
		backend, err := NewRedisBackend(ctx, opts.RedisAddr, logger)
		if err != nil {
			logger.Warn("redis cache unavailable, falling back to in-memory backend",
				slog.String("addr", opts.RedisAddr),
				slog.Any("error", err),
			)
			c.backend = NewMemoryBackend(opts.MaxSize)
			c.backendName = BackendMemory
			return c
		}
		c.backend = backend
		return c
	}

	c.backend = NewMemoryBackend(opts.MaxSize)
	return c
}

// GetTranscript returns the cached transcript for a video/language pair, or
// false when disabled, absent, expired, or unreadable.
func (c *TranscriptCache) GetTranscript(ctx context.Context, videoID string, languages []string) ([]model.Segment, bool) {
	if !c.enabled || c.backend == nil {
		return nil, false
	}

	key := transcriptKey(videoID, languages)
	data, ok := c.backend.Get(ctx, key)
	if !ok {
		c.count(metrics.CacheOpGet, metrics.CacheStatusMiss)
		return nil, false
	}

	var segments []model.Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		c.logger.Error("corrupt cached transcript",
			slog.String("key", key),
			slog.Any("error", err),
		)
		c.backend.Delete(ctx, key)
		c.count(metrics.CacheOpDelete, metrics.CacheStatusSuccess)
		c.count(metrics.CacheOpGet, metrics.CacheStatusError)
		return nil, false
	}

	c.count(metrics.CacheOpGet, metrics.CacheStatusHit)
	return segments, true
}

// SetTranscript caches a transcript under the video/language key with the
// configured TTL. No-op when disabled; a serialization failure drops the
// write.
func (c *TranscriptCache) SetTranscript(ctx context.Context, videoID string, transcript []model.Segment, languages []string) {
	if !c.enabled || c.backend == nil {
		return
	}

	key := transcriptKey(videoID, languages)
	data, err := json.Marshal(transcript)
	if err != nil {
		c.logger.Error("failed to serialize transcript",
			slog.String("key", key),
			slog.Any("error", err),
		)
		c.count(metrics.CacheOpSet, metrics.CacheStatusDropped)
		return
	}

	c.backend.Set(ctx, key, data, c.ttl)
	c.count(metrics.CacheOpSet, metrics.CacheStatusSuccess)
}

// GetMetadata returns the cached metadata for a video, or false when
// disabled, absent, expired, or unreadable.
func (c *TranscriptCache) GetMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, bool) {
	if !c.enabled || c.backend == nil {
		return nil, false
	}

	key := metadataKey(videoID)
	data, ok := c.backend.Get(ctx, key)
	if !ok {
		c.count(metrics.CacheOpGet, metrics.CacheStatusMiss)
		return nil, false
	}

	var metadata model.VideoMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		c.logger.Error("corrupt cached metadata",
			slog.String("key", key),
			slog.Any("error", err),
		)
		c.backend.Delete(ctx, key)
		c.count(metrics.CacheOpDelete, metrics.CacheStatusSuccess)
		c.count(metrics.CacheOpGet, metrics.CacheStatusError)
		return nil, false
	}

	c.count(metrics.CacheOpGet, metrics.CacheStatusHit)
	return &metadata, true
}

// SetMetadata caches video metadata with the configured TTL.
func (c *TranscriptCache) SetMetadata(ctx context.Context, videoID string, metadata *model.VideoMetadata) {
	if !c.enabled || c.backend == nil {
		return
	}

	key := metadataKey(videoID)
	data, err := json.Marshal(metadata)
	if err != nil {
		c.logger.Error("failed to serialize metadata",
			slog.String("key", key),
			slog.Any("error", err),
		)
		c.count(metrics.CacheOpSet, metrics.CacheStatusDropped)
		return
	}

	c.backend.Set(ctx, key, data, c.ttl)
	c.count(metrics.CacheOpSet, metrics.CacheStatusSuccess)
}

// Clear removes all cached data.
func (c *TranscriptCache) Clear(ctx context.Context) {
	if c.backend == nil {
		return
	}
	c.backend.Clear(ctx)
}

// Size returns the current entry count, 0 when disabled.
func (c *TranscriptCache) Size(ctx context.Context) int {
	if c.backend == nil {
		return 0
	}
	return c.backend.Size(ctx)
}

// CleanupExpired removes expired entries from the memory backend and returns
// how many were removed. Redis expires entries server-side, so the Redis
// variant always reports 0.
func (c *TranscriptCache) CleanupExpired() int {
	if mb, ok := c.backend.(*MemoryBackend); ok {
		return mb.CleanupExpired()
	}
	return 0
}

// Close releases backend resources, if any.
func (c *TranscriptCache) Close() error {
	if rb, ok := c.backend.(*RedisBackend); ok {
		return rb.Close()
	}
	return nil
}

// Enabled reports whether the cache is globally enabled.
func (c *TranscriptCache) Enabled() bool {
	return c.enabled
}

// BackendName reports which backend variant is active ("memory" or "redis").
// After a Redis construction fallback this reports "memory".
func (c *TranscriptCache) BackendName() string {
	return c.backendName
}

// TTL reports the expiry horizon applied to writes.
func (c *TranscriptCache) TTL() time.Duration {
	return c.ttl
}

// MaxSize reports the configured memory-backend capacity.
func (c *TranscriptCache) MaxSize() int {
	return c.maxSize
}

func (c *TranscriptCache) count(op, status string) {
	metrics.CacheOperationsTotal.WithLabelValues(op, status, c.backendName).Inc()
}

// transcriptKey derives the cache key for a transcript lookup. The language
// list is sorted before joining, so semantically identical requests produce
// byte-identical keys regardless of argument order. Translation-pair markers
// such as "en->>fr" pass through canonicalization untouched.
func transcriptKey(videoID string, languages []string) string {
	langs := defaultLanguage
	if len(languages) > 0 {
		sorted := slices.Clone(languages)
		slices.Sort(sorted)
		langs = strings.Join(sorted, ",")
	}
	return "transcript:" + videoID + ":" + langs
}

// metadataKey derives the cache key for a metadata lookup.
func metadataKey(videoID string) string {
	return "metadata:" + videoID
}
