// Package plancache defines the plan cache interface and errors.
package plancache

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacity sets the maximum number of patient plans kept in the cache.
func WithCapacity(capacity int) Option {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithTTL sets how long a cached patient plan stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
