// Package layout merges upstream layout plans with the section catalog
// into render-ready layouts.
package layout

import (
	"sort"

	"github.com/medvane/wardboard/internal/domain/model"
)

// Merge combines a section list with a plan into the final visible/hidden
// partition. Merge is pure: identical inputs always produce identical
// results, inputs are never mutated, and visible plus hidden always covers
// every input section exactly once.
//
// A nil plan falls back to the catalog defaults: default-visible sections
// ordered by descending default priority. A plan whose feature_priority is
// empty (or references only unknown ids) uses the same fallback, except
// that hidden_features still suppresses sections.
func Merge(sections []model.Section, plan *model.Plan) model.LayoutResult {
	deduped := dedupeSections(sections)

	if plan == nil {
		return defaultSplit(deduped, nil)
	}

	hiddenSet := make(map[string]bool, len(plan.HiddenFeatures))
	for _, id := range plan.HiddenFeatures {
		hiddenSet[id] = true
	}

	// Last occurrence wins for duplicate plan entries; entries for unknown
	// sections are dropped silently.
	known := make(map[string]bool, len(deduped))
	for _, s := range deduped {
		known[s.ID] = true
	}
	planned := make(map[string]model.FeatureEntry, len(plan.FeaturePriority))
	for _, e := range plan.FeaturePriority {
		if known[e.ID] {
			planned[e.ID] = e
		}
	}

	if len(planned) == 0 {
		return defaultSplit(deduped, hiddenSet)
	}

	visible := make([]model.Section, 0, len(deduped))
	for _, s := range deduped {
		if hiddenSet[s.ID] {
			continue
		}
		if _, ok := planned[s.ID]; ok || s.DefaultVisible {
			visible = append(visible, s)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		ei, iPlanned := planned[visible[i].ID]
		ej, jPlanned := planned[visible[j].ID]
		switch {
		case iPlanned && jPlanned:
			// Equal positions keep catalog order (stable sort).
			return ei.Position < ej.Position
		case iPlanned:
			return true
		case jPlanned:
			return false
		default:
			return visible[i].DefaultPriority > visible[j].DefaultPriority
		}
	})

	placements := make([]model.Placement, len(visible))
	shown := make(map[string]bool, len(visible))
	for i, s := range visible {
		size := model.SizeMedium
		if e, ok := planned[s.ID]; ok && e.Size != "" {
			size = e.Size
		}
		placements[i] = model.Placement{Section: s, Size: size}
		shown[s.ID] = true
	}

	hidden := make([]model.Section, 0, len(deduped)-len(visible))
	for _, s := range deduped {
		if !shown[s.ID] {
			hidden = append(hidden, s)
		}
	}

	return model.LayoutResult{Visible: placements, Hidden: hidden}
}

// ApplyOrder arranges sections by an explicit id order, the patient-detail
// plan variant. Unknown ids in the order are dropped, duplicates keep
// their first position, and catalog sections missing from the order are
// appended in catalog order.
func ApplyOrder(sections []model.Section, order []string) []model.Section {
	deduped := dedupeSections(sections)

	index := make(map[string]model.Section, len(deduped))
	for _, s := range deduped {
		index[s.ID] = s
	}

	out := make([]model.Section, 0, len(deduped))
	placed := make(map[string]bool, len(deduped))
	for _, id := range order {
		s, ok := index[id]
		if !ok || placed[id] {
			continue
		}
		out = append(out, s)
		placed[id] = true
	}

	for _, s := range deduped {
		if !placed[s.ID] {
			out = append(out, s)
		}
	}

	return out
}

// defaultSplit is the no-plan fallback: default-visible sections sorted by
// descending default priority, minus anything in hiddenSet.
func defaultSplit(sections []model.Section, hiddenSet map[string]bool) model.LayoutResult {
	visible := make([]model.Section, 0, len(sections))
	for _, s := range sections {
		if s.DefaultVisible && !hiddenSet[s.ID] {
			visible = append(visible, s)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].DefaultPriority > visible[j].DefaultPriority
	})

	placements := make([]model.Placement, len(visible))
	shown := make(map[string]bool, len(visible))
	for i, s := range visible {
		placements[i] = model.Placement{Section: s, Size: model.SizeMedium}
		shown[s.ID] = true
	}

	hidden := make([]model.Section, 0, len(sections)-len(visible))
	for _, s := range sections {
		if !shown[s.ID] {
			hidden = append(hidden, s)
		}
	}

	return model.LayoutResult{Visible: placements, Hidden: hidden}
}

// dedupeSections drops repeated ids, keeping the first occurrence.
func dedupeSections(sections []model.Section) []model.Section {
	seen := make(map[string]bool, len(sections))
	out := make([]model.Section, 0, len(sections))
	for _, s := range sections {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}
