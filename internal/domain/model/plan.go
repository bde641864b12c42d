// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Size is the render size hint a plan assigns to a visible section.
type Size string

// Render sizes understood by the dashboard.
const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// ParseSize normalizes a size string from a plan payload.
// Unknown values fall back to medium so a malformed plan never fails a merge.
func ParseSize(s string) Size {
	switch Size(strings.ToLower(strings.TrimSpace(s))) {
	case SizeSmall:
		return SizeSmall
	case SizeLarge:
		return SizeLarge
	case SizeMedium:
		return SizeMedium
	default:
		return SizeMedium
	}
}

// Density controls how aggressively AI suggestions are filtered
// before display.
type Density string

// Suggestion densities, ordered from most to least restrictive.
const (
	DensityLow    Density = "low"
	DensityMedium Density = "medium"
	DensityHigh   Density = "high"
)

// ParseDensity normalizes a density string from a plan payload.
// The second return reports whether the value was recognized; callers pick
// their own fallback for unknown values.
func ParseDensity(s string) (Density, bool) {
	switch Density(strings.ToLower(strings.TrimSpace(s))) {
	case DensityLow:
		return DensityLow, true
	case DensityMedium:
		return DensityMedium, true
	case DensityHigh:
		return DensityHigh, true
	default:
		return DensityHigh, false
	}
}

// FeatureEntry is one positioned section inside a layout plan.
// Fields mirror the upstream planner's feature_priority schema.
type FeatureEntry struct {
	ID           string  // section id, must match the catalog to take effect
	Position     int     // ascending display position, not necessarily contiguous
	Size         Size    // render size hint
	UsageCount   int     // historical interaction count, informational
	DailyAverage float64 // historical daily usage, informational
}

// Plan is a dashboard layout plan produced by the upstream planner.
// A nil *Plan means "no plan": the dashboard falls back to catalog defaults.
type Plan struct {
	FeaturePriority   []FeatureEntry
	HiddenFeatures    []string
	SuggestionDensity Density
	Explanation       string
	FetchedAt         time.Time
}

// PatientPlan is the patient-detail variant of a plan: a bare section order
// instead of positioned entries.
type PatientPlan struct {
	Order             []string
	SuggestionDensity Density
	Explanation       string
	FetchedAt         time.Time
}

// Suggestion is one AI suggestion as handed over by the dashboard for
// density filtering. Confidence is optional; nil means the producer did not
// score the suggestion.
type Suggestion struct {
	ID         string
	Text       string
	Confidence *float64
}
