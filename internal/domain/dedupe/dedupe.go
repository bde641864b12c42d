// Package dedupe provides idempotency tracking for suggestion feedback so
// a double-submitted verdict reaches the upstream bandit at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen feedback keys to ensure at-most-once forwarding.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if
	// not. Returns true if key was already seen, false if it was newly
	// recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key from the seen set, allowing a retry. Use it
	// when a verdict was recorded but could not be queued (backpressure).
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a map plus a FIFO eviction queue.
// With maxSize <= 0 the set is unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	queue   []string // insertion order; entries removed by Unrecord go stale and are skipped
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration
// options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})

	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}

	if d.maxSize > 0 {
		for len(d.seen) >= d.maxSize {
			d.evictOldest()
		}
		d.queue = append(d.queue, key)
	}

	d.seen[key] = struct{}{}
	d.size.Store(int64(len(d.seen)))
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// The queue entry stays behind as a stale marker; eviction skips it.
	delete(d.seen, key)
	d.size.Store(int64(len(d.seen)))
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// evictOldest pops queue entries until one live key is removed, then
// compacts the backing array if Unrecord left it mostly stale.
// Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	for len(d.queue) > 0 {
		oldest := d.queue[0]
		d.queue = d.queue[1:]
		if _, live := d.seen[oldest]; live {
			delete(d.seen, oldest)
			break
		}
	}

	if cap(d.queue) > 2*d.maxSize && len(d.queue) <= d.maxSize {
		compacted := make([]string, len(d.queue))
		copy(compacted, d.queue)
		d.queue = compacted
	}
}
