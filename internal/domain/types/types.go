// Package types contains wire types shared by the HTTP API and its clients
package types

import "time"

// SessionInfo describes an adaptation session to API clients.
type SessionInfo struct {
	SessionID         string `json:"session_id"`
	Specialty         string `json:"specialty,omitempty"`
	RefreshIntervalMS int64  `json:"refresh_interval_ms"`
}

// LayoutSection is one section entry in a layout response. Size is set for
// visible entries only.
type LayoutSection struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Size  string `json:"size,omitempty"`
}

// LayoutResponse is the merged dashboard layout for a session.
type LayoutResponse struct {
	Visible           []LayoutSection `json:"visible"`
	Hidden            []LayoutSection `json:"hidden"`
	SuggestionDensity string          `json:"suggestion_density"`
	Explanation       string          `json:"explanation,omitempty"`
	PlanApplied       bool            `json:"plan_applied"`
	RefreshedAt       *time.Time      `json:"refreshed_at,omitempty"`
}

// InteractionAck acknowledges a reported interaction. Signal names the
// classification outcome, or "none" for neutral and state-only events.
type InteractionAck struct {
	Status string `json:"status"`
	Signal string `json:"signal"`
}

// SuggestionItem mirrors one AI suggestion on the wire.
type SuggestionItem struct {
	ID         string   `json:"id"`
	Text       string   `json:"text,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// FilterResponse is a density-filtered suggestion list.
type FilterResponse struct {
	Suggestions []SuggestionItem `json:"suggestions"`
	Density     string           `json:"density"`
}

// PatientLayoutResponse is the patient-detail section order.
type PatientLayoutResponse struct {
	Order             []string `json:"order"`
	SuggestionDensity string   `json:"suggestion_density"`
	Explanation       string   `json:"explanation,omitempty"`
	Cached            bool     `json:"cached"`
}

// AckResponse acknowledges an accepted fire-and-forget submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate,omitempty"`
}
