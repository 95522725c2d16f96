package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// memoryEntry is a cached value with its absolute expiry instant.
type memoryEntry struct {
	key    string
	value  []byte
	expiry time.Time
}

// MemoryBackend is an in-process bounded store with LRU eviction.
// The list keeps recency order with the least-recently-used entry at the
// front; every read hit and every write moves the entry to the back.
// Entries expire lazily: an expired entry is removed by the Get that finds
// it, or by CleanupExpired.
//
// A single mutex guards the map and list for the duration of each call.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	maxSize int

	now func() time.Time
}

// NewMemoryBackend creates a MemoryBackend holding at most maxSize entries.
func NewMemoryBackend(maxSize int) *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the value for key, refreshing its recency.
// An expired entry is removed and reported as a miss.
func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	elem, ok := b.entries[key]
	if !ok {
		return nil, false
	}

	ent := elem.Value.(*memoryEntry)
	if b.now().After(ent.expiry) {
		b.removeElement(elem)
		return nil, false
	}

	b.order.MoveToBack(elem)
	return ent.value, true
}

// Set stores value under key. An existing entry is removed first so the
// re-insertion lands at the most-recently-used position. The least-recently-
// used entries are evicted while the backend is at capacity.
func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elem, ok := b.entries[key]; ok {
		b.removeElement(elem)
	}

	for b.maxSize > 0 && b.order.Len() >= b.maxSize {
		b.removeElement(b.order.Front())
	}

	elem := b.order.PushBack(&memoryEntry{
		key:    key,
		value:  value,
		expiry: b.now().Add(ttl),
	})
	b.entries[key] = elem
}

// Delete removes the entry for key if present.
func (b *MemoryBackend) Delete(_ context.Context, key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elem, ok := b.entries[key]; ok {
		b.removeElement(elem)
	}
}

// Clear removes all entries.
func (b *MemoryBackend) Clear(_ context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[string]*list.Element)
	b.order.Init()
}

// Size returns the number of stored entries, expired ones included until a
// Get or CleanupExpired removes them.
func (b *MemoryBackend) Size(_ context.Context) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.order.Len()
}

// CleanupExpired scans the whole store and removes every expired entry,
// returning the number removed. Expiry is otherwise only detected on Get.
func (b *MemoryBackend) CleanupExpired() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	removed := 0

	var next *list.Element
	for elem := b.order.Front(); elem != nil; elem = next {
		next = elem.Next()
		if now.After(elem.Value.(*memoryEntry).expiry) {
			b.removeElement(elem)
			removed++
		}
	}
	return removed
}

// removeElement drops an entry from both the map and the recency list.
// Callers must hold b.mu.
func (b *MemoryBackend) removeElement(elem *list.Element) {
	ent := elem.Value.(*memoryEntry)
	delete(b.entries, ent.key)
	b.order.Remove(elem)
}
