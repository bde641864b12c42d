package model

// Section is one dashboard section from the closed catalog.
type Section struct {
	ID              string // stable identifier, e.g. "vitals"
	Label           string // human-readable name
	DefaultPriority int    // 0..10, used when no plan or specialty entry applies
	DefaultVisible  bool   // shown without any plan
}

// Placement is a visible section together with its render size.
type Placement struct {
	Section
	Size Size
}

// LayoutResult is a merged dashboard layout: an ordered visible list and
// the remaining hidden sections. Visible and Hidden always partition the
// input section list.
type LayoutResult struct {
	Visible []Placement
	Hidden  []Section
}

// Order returns the visible section ids in display order.
func (r LayoutResult) Order() []string {
	ids := make([]string, len(r.Visible))
	for i, p := range r.Visible {
		ids[i] = p.ID
	}
	return ids
}

// Contains reports whether id appears in either half of the layout.
func (r LayoutResult) Contains(id string) bool {
	for _, p := range r.Visible {
		if p.ID == id {
			return true
		}
	}
	for _, s := range r.Hidden {
		if s.ID == id {
			return true
		}
	}
	return false
}
