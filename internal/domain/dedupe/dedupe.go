// Package dedupe tracks idempotency keys so a retried create request is
// recognised instead of written twice.
package dedupe

import (
	"context"
	"sync"
	"time"
)

// Deduper records request keys to ensure at-most-once writes.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so the request can be retried, used when the write
	// that followed SeenAndRecord failed.
	Unrecord(ctx context.Context, key string)

	Size() int
}

type entry struct {
	key string
	at  time.Time
}

// inMemoryDeduper keeps keys in a map plus an insertion-ordered ring so the
// oldest key is evicted once maxSize is reached. Entries older than ttl are
// treated as unseen.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]time.Time
	order   []entry
	head    int
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 10_000,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]time.Time)
	return d
}

// SeenAndRecord reports whether key was seen, recording it when new.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if at, ok := d.seen[key]; ok {
		if d.ttl <= 0 || now.Sub(at) < d.ttl {
			return true
		}
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = now
	d.order = append(d.order, entry{key: key, at: now})
	return false
}

// Unrecord removes key. Its slot in the ring is skipped during eviction.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}

// evictOldest drops ring entries until one live key has been removed.
// Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	for d.head < len(d.order) {
		e := d.order[d.head]
		d.order[d.head] = entry{}
		d.head++
		// Skip entries superseded by Unrecord or a later re-record.
		if at, ok := d.seen[e.key]; ok && at.Equal(e.at) {
			delete(d.seen, e.key)
			break
		}
	}
	// Compact once the dead prefix dominates.
	if d.head > len(d.order)/2 {
		d.order = append([]entry(nil), d.order[d.head:]...)
		d.head = 0
	}
}

// Size returns the number of live keys.
func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
