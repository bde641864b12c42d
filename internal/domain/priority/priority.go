// Package priority resolves per-specialty section priorities and derives
// specialty-aware baseline layouts used before any learned plan exists.
package priority

import (
	"sort"

	"github.com/medvane/wardboard/internal/domain/model"
)

// Default resolver configuration constants.
const (
	// FallbackPriority applies when neither a specialty entry nor a
	// section default exists.
	FallbackPriority = 5
	// DefaultVisibilityThreshold is the minimum resolved priority that
	// makes a section visible for a specialty regardless of its default
	// visibility.
	DefaultVisibilityThreshold = 3

	minPriority = 0
	maxPriority = 10
)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithSpecialtyPriorities sets the specialty override tables. The maps are
// copied; entries outside 0..10 are dropped.
func WithSpecialtyPriorities(tables map[string]map[string]int) Option {
	return func(r *Resolver) {
		r.specialty = make(map[string]map[string]int, len(tables))
		for specialty, tbl := range tables {
			inner := make(map[string]int, len(tbl))
			for id, p := range tbl {
				if p >= minPriority && p <= maxPriority {
					inner[id] = p
				}
			}
			r.specialty[specialty] = inner
		}
	}
}

// WithSectionDefaults sets the section id -> default priority table used
// when a specialty has no entry for a section.
func WithSectionDefaults(defaults map[string]int) Option {
	return func(r *Resolver) {
		r.defaults = make(map[string]int, len(defaults))
		for id, p := range defaults {
			if p >= minPriority && p <= maxPriority {
				r.defaults[id] = p
			}
		}
	}
}

// WithFallbackPriority sets the priority for sections unknown to every
// table.
func WithFallbackPriority(p int) Option {
	return func(r *Resolver) {
		if p >= minPriority && p <= maxPriority {
			r.fallback = p
		}
	}
}

// WithVisibilityThreshold sets the minimum resolved priority that forces a
// section visible for a specialty.
func WithVisibilityThreshold(threshold int) Option {
	return func(r *Resolver) {
		if threshold >= minPriority && threshold <= maxPriority {
			r.threshold = threshold
		}
	}
}

// Resolver answers priority lookups against the configured tables. All
// methods are pure; a Resolver is safe for concurrent use once built.
type Resolver struct {
	specialty map[string]map[string]int
	defaults  map[string]int
	fallback  int
	threshold int
}

// NewResolver creates a resolver with configuration options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		specialty: make(map[string]map[string]int),
		defaults:  make(map[string]int),
		fallback:  FallbackPriority,
		threshold: DefaultVisibilityThreshold,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// PriorityOf resolves the priority of a section for a specialty.
// Lookup order: specialty table, section default, fallback. An empty or
// unknown specialty skips straight to the section default.
func (r *Resolver) PriorityOf(sectionID, specialty string) int {
	if specialty != "" {
		if tbl, ok := r.specialty[specialty]; ok {
			if p, ok := tbl[sectionID]; ok {
				return p
			}
		}
	}
	if p, ok := r.defaults[sectionID]; ok {
		return p
	}
	return r.fallback
}

// SortBySpecialty returns the sections ordered by descending resolved
// priority. Ties fall back to descending default priority; remaining ties
// keep the input order. The input slice is never mutated.
func (r *Resolver) SortBySpecialty(sections []model.Section, specialty string) []model.Section {
	out := make([]model.Section, len(sections))
	copy(out, sections)

	sort.SliceStable(out, func(i, j int) bool {
		pi := r.PriorityOf(out[i].ID, specialty)
		pj := r.PriorityOf(out[j].ID, specialty)
		if pi != pj {
			return pi > pj
		}
		return out[i].DefaultPriority > out[j].DefaultPriority
	})

	return out
}

// FilterBySpecialty returns the sections that should be visible for a
// specialty: resolved priority at or above the threshold, or visible by
// default. An absent specialty keeps only the default-visible sections.
// Order is preserved; the input slice is never mutated.
func (r *Resolver) FilterBySpecialty(sections []model.Section, specialty string) []model.Section {
	out := make([]model.Section, 0, len(sections))
	for _, s := range sections {
		if specialty == "" {
			if s.DefaultVisible {
				out = append(out, s)
			}
			continue
		}
		if r.PriorityOf(s.ID, specialty) >= r.threshold || s.DefaultVisible {
			out = append(out, s)
		}
	}
	return out
}

// LayoutFor derives the specialty baseline layout: filtered and sorted
// visible sections (medium-sized), everything else hidden in input order.
// Duplicate ids in the input are dropped, first occurrence wins.
func (r *Resolver) LayoutFor(sections []model.Section, specialty string) model.LayoutResult {
	deduped := dedupeSections(sections)

	visible := r.SortBySpecialty(r.FilterBySpecialty(deduped, specialty), specialty)

	shown := make(map[string]bool, len(visible))
	placements := make([]model.Placement, len(visible))
	for i, s := range visible {
		shown[s.ID] = true
		placements[i] = model.Placement{Section: s, Size: model.SizeMedium}
	}

	hidden := make([]model.Section, 0, len(deduped)-len(visible))
	for _, s := range deduped {
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
