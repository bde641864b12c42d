// Package catalog holds the closed registry of dashboard sections and the
// per-specialty priority tables. The catalog is fixed at build time; slice
// order is the canonical tie-break order everywhere layouts are sorted.
package catalog

import "github.com/medvane/wardboard/internal/domain/model"

// sections is the canonical catalog in canonical order.
var sections = []model.Section{
	{ID: "vitals", Label: "Vital Signs", DefaultPriority: 9, DefaultVisible: true},
	{ID: "problem_list", Label: "Problem List", DefaultPriority: 8, DefaultVisible: true},
	{ID: "medications", Label: "Medications", DefaultPriority: 8, DefaultVisible: true},
	{ID: "allergies", Label: "Allergies", DefaultPriority: 7, DefaultVisible: true},
	{ID: "lab_results", Label: "Lab Results", DefaultPriority: 7, DefaultVisible: true},
	{ID: "clinical_notes", Label: "Clinical Notes", DefaultPriority: 6, DefaultVisible: true},
	{ID: "orders", Label: "Active Orders", DefaultPriority: 5, DefaultVisible: true},
	{ID: "imaging", Label: "Imaging", DefaultPriority: 4, DefaultVisible: false},
	{ID: "ecg", Label: "ECG", DefaultPriority: 3, DefaultVisible: false},
	{ID: "immunizations", Label: "Immunizations", DefaultPriority: 3, DefaultVisible: false},
	{ID: "care_plan", Label: "Care Plan", DefaultPriority: 2, DefaultVisible: false},
	{ID: "appointments", Label: "Appointments", DefaultPriority: 2, DefaultVisible: false},
}

// specialtyPriorities lists per-specialty overrides. Sections without an
// entry fall back to their default priority. Values stay within 0..10.
var specialtyPriorities = map[string]map[string]int{
	"cardiology": {
		"vitals":        10,
		"ecg":           9,
		"lab_results":   8,
		"imaging":       6,
		"immunizations": 1,
		"appointments":  1,
	},
	"emergency": {
		"vitals":        10,
		"allergies":     9,
		"medications":   8,
		"orders":        8,
		"imaging":       7,
		"ecg":           7,
		"immunizations": 2,
		"care_plan":     1,
		"appointments":  0,
	},
	"oncology": {
		"lab_results":    9,
		"medications":    9,
		"imaging":        8,
		"care_plan":      8,
		"clinical_notes": 7,
		"immunizations":  2,
		"ecg":            1,
	},
	"pediatrics": {
		"immunizations": 9,
		"vitals":        9,
		"allergies":     8,
		"appointments":  6,
		"imaging":       3,
		"ecg":           2,
	},
	"endocrinology": {
		"lab_results": 9,
		"medications": 8,
		"vitals":      7,
		"care_plan":   6,
		"ecg":         2,
		"imaging":     2,
	},
	"neurology": {
		"imaging":        9,
		"clinical_notes": 8,
		"medications":    7,
		"ecg":            4,
		"immunizations":  1,
	},
}

// Sections returns a copy of the catalog in canonical order.
func Sections() []model.Section {
	out := make([]model.Section, len(sections))
	copy(out, sections)
	return out
}

// DefaultPriorities returns section id -> default priority for the whole
// catalog.
func DefaultPriorities() map[string]int {
	out := make(map[string]int, len(sections))
	for _, s := range sections {
		out[s.ID] = s.DefaultPriority
	}
	return out
}

// SpecialtyPriorities returns a deep copy of the specialty override tables.
func SpecialtyPriorities() map[string]map[string]int {
	out := make(map[string]map[string]int, len(specialtyPriorities))
	for specialty, tbl := range specialtyPriorities {
		inner := make(map[string]int, len(tbl))
		for id, p := range tbl {
			inner[id] = p
		}
		out[specialty] = inner
	}
	return out
}

// Lookup returns the catalog section with the given id.
func Lookup(id string) (model.Section, bool) {
	for _, s := range sections {
		if s.ID == id {
			return s, true
		}
	}
	return model.Section{}, false
}

// KnownSpecialty reports whether a specialty has an override table.
func KnownSpecialty(specialty string) bool {
	_, ok := specialtyPriorities[specialty]
	return ok
}

// IDs returns all section ids in canonical order.
func IDs() []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.ID
	}
	return out
}
