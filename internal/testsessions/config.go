package testsessions

import "time"

// Config holds configuration for the session test
type Config struct {
	BaseURL        string        // Base URL of the service
	NumSessions    int           // Number of sessions to open
	Interactions   int           // Interactions per session
	SuggestionSize int           // Suggestion batch size per session
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	OutputFile     string        // Output file for the session report
	LogFile        string        // Log file for test output
	Verbose        bool          // Enable verbose logging
}

// Session represents one opened session and its scripted traffic
type Session struct {
	SessionID string `json:"session_id"`
	Specialty string `json:"specialty"`
	Script    []Step `json:"script"`
}

// Step is one scripted interaction against a session
type Step struct {
	FeatureID string `json:"feature_id"`
	Action    string `json:"action"`
	CloseView bool   `json:"close_view"`
}

// Layout mirrors the layout response wire shape
type Layout struct {
	Visible           []LayoutSection `json:"visible"`
	Hidden            []LayoutSection `json:"hidden"`
	SuggestionDensity string          `json:"suggestion_density"`
	Explanation       string          `json:"explanation,omitempty"`
	PlanApplied       bool            `json:"plan_applied"`
}

// LayoutSection mirrors one section in a layout response
type LayoutSection struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Size  string `json:"size,omitempty"`
}

// SuggestionItem mirrors the suggestion wire shape
type SuggestionItem struct {
	ID         string   `json:"id"`
	Text       string   `json:"text,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// FilterResult mirrors the filter response wire shape
type FilterResult struct {
	Suggestions []SuggestionItem `json:"suggestions"`
	Density     string           `json:"density"`
}

// AckResponse represents the response from verdict submission
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// InteractionAck represents the response from interaction submission
type InteractionAck struct {
	Status string `json:"status"`
	Signal string `json:"signal"`
}

// Stats holds test statistics
type Stats struct {
	SessionsOpened        int
	SessionsFailed        int
	InteractionsSubmitted int
	SignalsClassified     int
	InteractionsFailed    int
	LayoutsVerified       int
	LayoutViolations      int
	FiltersChecked        int
	FilterViolations      int
	VerdictsSubmitted     int
	VerdictsDuplicate     int
	VerdictsFailed        int
	NavigationsSubmitted  int
	SessionsClosed        int
	StartTime             time.Time
	EndTime               time.Time
	Duration              time.Duration
}
