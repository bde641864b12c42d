package model

import (
	"strings"
	"time"
)

// SignalKind names the classified interaction outcome behind a feedback
// signal.
type SignalKind string

// Signal kinds emitted to the bandit.
const (
	SignalQuickGlance   SignalKind = "quick_glance"
	SignalProlongedRead SignalKind = "prolonged_read"
	SignalScrolledPast  SignalKind = "scrolled_past"
)

// FeedbackSignal is one weighted bandit feedback item derived from a
// classified interaction.
type FeedbackSignal struct {
	ID        string        // unique id, for logging and tracing
	FeatureID string        // section the interaction targeted
	Kind      SignalKind    // classification outcome
	Success   bool          // positive or negative reinforcement
	Weight    float64       // one of 0.5, 1.0, 1.5
	Specialty string        // session specialty, may be empty
	Dwell     time.Duration // observed viewing time, zero for scroll-past
	At        time.Time     // when the signal was produced
}

// NavigationEvent is one section-to-section navigation reported by the
// dashboard for upstream monitoring.
type NavigationEvent struct {
	PatientID   string // optional
	FromSection string // optional, empty on dashboard entry
	ToSection   string
	At          time.Time
}

// FeedbackAction is a clinician's verdict on one AI suggestion.
type FeedbackAction string

// Actions accepted by the upstream feedback endpoint.
const (
	ActionAccept      FeedbackAction = "accept"
	ActionIgnore      FeedbackAction = "ignore"
	ActionNotRelevant FeedbackAction = "not_relevant"
)

// ParseFeedbackAction validates a feedback action string.
func ParseFeedbackAction(s string) (FeedbackAction, bool) {
	switch FeedbackAction(strings.ToLower(strings.TrimSpace(s))) {
	case ActionAccept:
		return ActionAccept, true
	case ActionIgnore:
		return ActionIgnore, true
	case ActionNotRelevant:
		return ActionNotRelevant, true
	default:
		return "", false
	}
}

// SuggestionFeedback is a clinician verdict queued for upstream delivery.
type SuggestionFeedback struct {
	SuggestionID string
	Action       FeedbackAction
	PatientID    string // optional
}

// OutboundKind tags the payload carried by an Outbound item.
type OutboundKind string

// Outbound item kinds.
const (
	OutboundSignal     OutboundKind = "signal"
	OutboundNavigation OutboundKind = "navigation"
	OutboundSuggestion OutboundKind = "suggestion_feedback"
)

// Outbound is one queued item bound for the upstream backend. Exactly one
// payload field is meaningful, selected by Kind.
type Outbound struct {
	Kind       OutboundKind
	Signal     FeedbackSignal
	Navigation NavigationEvent
	Suggestion SuggestionFeedback
}

// NewOutboundSignal wraps a feedback signal for queueing.
func NewOutboundSignal(s FeedbackSignal) Outbound {
	return Outbound{Kind: OutboundSignal, Signal: s}
}

// NewOutboundNavigation wraps a navigation event for queueing.
func NewOutboundNavigation(n NavigationEvent) Outbound {
	return Outbound{Kind: OutboundNavigation, Navigation: n}
}

// NewOutboundSuggestion wraps a suggestion verdict for queueing.
func NewOutboundSuggestion(f SuggestionFeedback) Outbound {
	return Outbound{Kind: OutboundSuggestion, Suggestion: f}
}
