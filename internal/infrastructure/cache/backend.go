package cache

import (
	"context"
	"time"
)

// Backend defines the storage strategy behind the transcript cache.
// A backend is a best-effort store: it must absorb its own failures, so a
// broken backend behaves like an always-miss cache and never returns an
// error to the caller.
type Backend interface {
	// Get returns the value stored under key. The second return value is
	// false if the key was never written, the entry has expired, or the
	// backend failed.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key, expiring ttl from now.
	// An existing entry for the same key is overwritten.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes the entry for key if present.
	Delete(ctx context.Context, key string)

	// Clear removes every entry belonging to this cache.
	Clear(ctx context.Context)

	// Size returns the number of currently stored entries.
	Size(ctx context.Context) int
}
