// Package suggestion filters AI suggestion lists by the plan's density
// setting.
package suggestion

import "github.com/medvane/wardboard/internal/domain/model"

// Confidence thresholds per density. High applies no threshold at all.
const (
	LowConfidenceMin    = 0.7
	MediumConfidenceMin = 0.4
)

// Filter returns the suggestions that survive the density setting:
// low keeps confidently scored items only, medium relaxes the threshold,
// high keeps everything including unscored items. The result preserves
// order and is always a fresh slice; the input is never mutated.
//
// Confidence values outside [0,1] are treated as unscored, so they only
// survive the high density. The subsets nest: low ⊆ medium ⊆ high.
func Filter(items []model.Suggestion, density model.Density) []model.Suggestion {
	out := make([]model.Suggestion, 0, len(items))

	for _, item := range items {
		if keep(item, density) {
			out = append(out, item)
		}
	}

	return out
}

func keep(item model.Suggestion, density model.Density) bool {
	switch density {
	case model.DensityLow:
		return scored(item) && *item.Confidence >= LowConfidenceMin
	case model.DensityMedium:
		return scored(item) && *item.Confidence >= MediumConfidenceMin
	default:
		// High and anything unrecognized show the full list.
		return true
	}
}

// scored reports whether the suggestion carries a usable confidence.
func scored(item model.Suggestion) bool {
	return item.Confidence != nil && *item.Confidence >= 0 && *item.Confidence <= 1
}
