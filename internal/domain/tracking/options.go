// Package tracking keeps per-session open viewing observations and closes
// them into feedback outcomes.
package tracking

// Default tracker configuration constants.
const (
	defaultMaxOpen = 256
)

// Option applies a configuration option to the in-memory tracker.
type Option func(*inMemoryTracker)

// WithMaxOpen caps the number of concurrently open observations. Starts
// beyond the cap are dropped.
func WithMaxOpen(maxOpen int) Option {
	return func(t *inMemoryTracker) {
		if maxOpen > 0 {
			t.maxOpen = maxOpen
		}
	}
}
