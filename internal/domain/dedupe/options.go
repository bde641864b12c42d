// Package dedupe provides idempotency tracking for suggestion feedback so
// a double-submitted verdict reaches the upstream bandit at most once.
package dedupe

// Default deduper configuration constants.
const (
	defaultMaxSize = 50000
)

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of keys to keep in memory.
// If maxSize > 0: bounded mode with FIFO eviction.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
