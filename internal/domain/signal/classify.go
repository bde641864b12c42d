// Package signal classifies viewing behavior into weighted bandit
// feedback.
package signal

import (
	"time"

	"github.com/medvane/wardboard/internal/domain/model"
)

// Classification thresholds and weights. The weights form the closed set
// the upstream bandit expects.
const (
	// QuickGlanceMax is the exclusive upper bound for a quick glance.
	QuickGlanceMax = 5 * time.Second
	// ProlongedReadMin is the exclusive lower bound for a prolonged read.
	// Dwells between the two bounds are neutral and produce no signal.
	ProlongedReadMin = 30 * time.Second

	WeightQuickGlance   = 1.0
	WeightProlongedRead = 1.5
	WeightScrolledPast  = 0.5
)

// Outcome is a classified interaction ready to become a feedback signal.
type Outcome struct {
	Kind    model.SignalKind
	Success bool
	Weight  float64
}

// Classify maps a dwell duration to a feedback outcome. The second return
// is false for neutral dwells, which produce no signal at all. Negative
// dwells (clock skew) are clamped to zero and classify as quick glances.
func Classify(dwell time.Duration) (Outcome, bool) {
	if dwell < 0 {
		dwell = 0
	}
	switch {
	case dwell < QuickGlanceMax:
		return Outcome{Kind: model.SignalQuickGlance, Success: true, Weight: WeightQuickGlance}, true
	case dwell > ProlongedReadMin:
		return Outcome{Kind: model.SignalProlongedRead, Success: true, Weight: WeightProlongedRead}, true
	default:
		return Outcome{}, false
	}
}

// ScrolledPast returns the fixed negative outcome for a section the user
// scrolled past without opening. It always produces a signal.
func ScrolledPast() Outcome {
	return Outcome{Kind: model.SignalScrolledPast, Success: false, Weight: WeightScrolledPast}
}
