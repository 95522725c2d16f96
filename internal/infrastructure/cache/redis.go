package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ytkit/yttools/internal/infrastructure/metrics"
)

const (
	// redisKeyPrefix namespaces every key this cache writes, so Clear and
	// Size only ever touch our own keys on a shared Redis instance.
	redisKeyPrefix = "ytcache:"

	// redisScanCount is the batch size hint for SCAN iterations.
	redisScanCount = 100
)

// RedisBackend stores cache entries in Redis, relying on server-side expiry
// instead of local bookkeeping. Runtime failures are logged and degrade to
// misses/no-ops; only construction fails hard.
type RedisBackend struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisBackend connects to the Redis instance at addr and verifies the
// connection. It fails fast when the instance is unreachable.
func NewRedisBackend(ctx context.Context, addr string, logger *slog.Logger) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	logger.Info("connected to redis cache", slog.String("addr", addr))
	return &RedisBackend{
		client: client,
		logger: logger,
	}, nil
}

// Get retrieves the value for key. Any Redis failure is reported as a miss.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := b.client.Get(ctx, b.buildKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			b.logger.Error("redis get failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
			metrics.CacheOperationsTotal.WithLabelValues(
				metrics.CacheOpGet, metrics.CacheStatusError, BackendRedis).Inc()
		}
		return nil, false
	}
	return data, true
}

// Set stores value under key with Redis-side expiry. Failures are dropped
// writes, logged but never propagated.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := b.client.Set(ctx, b.buildKey(key), value, ttl).Err(); err != nil {
		b.logger.Error("redis set failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		metrics.CacheOperationsTotal.WithLabelValues(
			metrics.CacheOpSet, metrics.CacheStatusError, BackendRedis).Inc()
	}
}

// Delete removes the entry for key.
func (b *RedisBackend) Delete(ctx context.Context, key string) {
	if err := b.client.Del(ctx, b.buildKey(key)).Err(); err != nil {
		b.logger.Error("redis del failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

// Clear removes every key under the cache prefix, leaving unrelated keys on
// the same instance untouched.
func (b *RedisBackend) Clear(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := b.client.Scan(ctx, cursor, redisKeyPrefix+"*", redisScanCount).Result()
		if err != nil {
			b.logger.Error("redis scan failed during clear", slog.Any("error", err))
			return
		}
		if len(keys) > 0 {
			if err := b.client.Del(ctx, keys...).Err(); err != nil {
				b.logger.Error("redis del failed during clear", slog.Any("error", err))
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// Size counts the keys under the cache prefix. This scans the keyspace and
// can be expensive on large instances; it is meant for diagnostics.
func (b *RedisBackend) Size(ctx context.Context) int {
	var cursor uint64
	count := 0
	for {
		keys, next, err := b.client.Scan(ctx, cursor, redisKeyPrefix+"*", redisScanCount).Result()
		if err != nil {
			b.logger.Error("redis scan failed during size", slog.Any("error", err))
			return 0
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count
		}
	}
}

// Close releases the underlying Redis connection.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func (b *RedisBackend) buildKey(key string) string {
	return redisKeyPrefix + key
}
