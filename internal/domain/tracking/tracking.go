// Package tracking keeps per-session open viewing observations and closes
// them into feedback outcomes.
package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/medvane/wardboard/internal/domain/model"
	"github.com/medvane/wardboard/internal/domain/signal"
)

// Tracker records section viewing state for one session. A feature is
// either idle or has exactly one open observation; transitions that make
// no sense are silent no-ops.
type Tracker interface {
	// StartViewing opens an observation for a feature. Re-entrant: a
	// second start overwrites the first (last write wins) and produces
	// nothing.
	StartViewing(ctx context.Context, featureID string, at time.Time)

	// StopViewing closes the open observation and classifies the dwell.
	// Returns false when the feature was idle (invalid transition) or the
	// dwell was neutral; in both cases no signal is produced.
	StopViewing(ctx context.Context, featureID string, at time.Time) (model.FeedbackSignal, bool)

	// ScrolledPast always produces the weak negative signal and clears
	// any open observation for the feature.
	ScrolledPast(ctx context.Context, featureID string, at time.Time) model.FeedbackSignal

	// OpenCount returns the number of currently open observations.
	OpenCount() int
}

// inMemoryTracker implements Tracker with a plain map guarded by a mutex.
type inMemoryTracker struct {
	mu      sync.Mutex
	open    map[string]time.Time // feature id -> view start
	maxOpen int                  // cap on concurrently open observations
}

// NewInMemoryTracker creates a tracker with configuration options.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{
		maxOpen: defaultMaxOpen,
	}

	for _, opt := range opts {
		opt(t)
	}

	t.open = make(map[string]time.Time)

	return t
}

func (t *inMemoryTracker) StartViewing(_ context.Context, featureID string, at time.Time) {
	if featureID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.open[featureID]; !exists && len(t.open) >= t.maxOpen {
		// At the cap, starts for new features are dropped rather than grown.
		return
	}
	t.open[featureID] = at
}

func (t *inMemoryTracker) StopViewing(_ context.Context, featureID string, at time.Time) (model.FeedbackSignal, bool) {
	t.mu.Lock()
	start, exists := t.open[featureID]
	if exists {
		delete(t.open, featureID)
	}
	t.mu.Unlock()

	if !exists {
		// Stop without start: invalid transition, silently ignored.
		return model.FeedbackSignal{}, false
	}

	dwell := at.Sub(start)
	if dwell < 0 {
		dwell = 0
	}

	out, ok := signal.Classify(dwell)
	if !ok {
		return model.FeedbackSignal{}, false
	}

	return model.FeedbackSignal{
		FeatureID: featureID,
		Kind:      out.Kind,
		Success:   out.Success,
		Weight:    out.Weight,
		Dwell:     dwell,
		At:        at,
	}, true
}

func (t *inMemoryTracker) ScrolledPast(_ context.Context, featureID string, at time.Time) model.FeedbackSignal {
	t.mu.Lock()
	delete(t.open, featureID)
	t.mu.Unlock()

	out := signal.ScrolledPast()

	return model.FeedbackSignal{
		FeatureID: featureID,
		Kind:      out.Kind,
		Success:   out.Success,
		Weight:    out.Weight,
		At:        at,
	}
}

func (t *inMemoryTracker) OpenCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.open)
}
