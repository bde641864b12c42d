package testsessions

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// verifyLayouts checks every fetched layout against the published
// layout guarantees.
func verifyLayouts(ctx context.Context, config *Config, layouts []SessionLayout, stats *Stats) error {
	log.Println("🔍 Verifying layouts...")

	if len(layouts) == 0 {
		return fmt.Errorf("no layouts to verify")
	}

	violations := 0
	var union map[string]bool

	for _, sl := range layouts {
		if err := verifyPartition(sl.Layout); err != nil {
			violations++
			log.Printf("⚠️  Layout violation for %s (%s): %v", sl.SessionID, sl.Specialty, err)
			continue
		}

		// Every session sees the same closed set of sections, split
		// differently. The first valid layout defines the universe.
		u := sectionUnion(sl.Layout)
		if union == nil {
			union = u
		} else if err := compareUnions(union, u); err != nil {
			violations++
			log.Printf("⚠️  Section universe mismatch for %s (%s): %v", sl.SessionID, sl.Specialty, err)
		}
	}

	stats.LayoutsVerified = len(layouts) - violations
	stats.LayoutViolations = violations

	displayTopSections(layouts, config.Verbose)

	if violations > 0 {
		log.Printf("⚠️  Layout verification finished with %d violations", violations)
	} else {
		log.Println("✅ Layout verification completed")
	}
	return nil
}

// verifyPartition checks the visible/hidden split of one layout.
func verifyPartition(layout Layout) error {
	switch layout.SuggestionDensity {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("unknown suggestion density %q", layout.SuggestionDensity)
	}

	seen := make(map[string]string)
	for _, section := range layout.Visible {
		if section.ID == "" {
			return fmt.Errorf("visible section with empty id")
		}
		if where, ok := seen[section.ID]; ok {
			return fmt.Errorf("section %s appears twice (%s and visible)", section.ID, where)
		}
		seen[section.ID] = "visible"
	}
	for _, section := range layout.Hidden {
		if section.ID == "" {
			return fmt.Errorf("hidden section with empty id")
		}
		if where, ok := seen[section.ID]; ok {
			return fmt.Errorf("section %s appears twice (%s and hidden)", section.ID, where)
		}
		seen[section.ID] = "hidden"
	}

	if len(layout.Visible) == 0 {
		return fmt.Errorf("no visible sections")
	}
	return nil
}

// sectionUnion collects all section ids of a layout.
func sectionUnion(layout Layout) map[string]bool {
	union := make(map[string]bool, len(layout.Visible)+len(layout.Hidden))
	for _, section := range layout.Visible {
		union[section.ID] = true
	}
	for _, section := range layout.Hidden {
		union[section.ID] = true
	}
	return union
}

// compareUnions checks that two layouts cover the same section set.
func compareUnions(want, got map[string]bool) error {
	for id := range want {
		if !got[id] {
			return fmt.Errorf("section %s missing", id)
		}
	}
	for id := range got {
		if !want[id] {
			return fmt.Errorf("unexpected section %s", id)
		}
	}
	return nil
}

// verifyFilterSweeps checks the density subset chain on every sweep.
func verifyFilterSweeps(ctx context.Context, config *Config, sweeps []FilterSweep, stats *Stats) error {
	log.Println("🔍 Verifying suggestion filter sweeps...")

	if len(sweeps) == 0 {
		log.Println("⚠️  No filter sweeps to verify")
		return nil
	}

	violations := 0
	for _, sweep := range sweeps {
		if err := verifySubsetChain(sweep); err != nil {
			violations++
			log.Printf("⚠️  Filter violation for %s: %v", sweep.SessionID, err)
		}
	}

	stats.FilterViolations = violations

	if violations > 0 {
		log.Printf("⚠️  Filter verification finished with %d violations", violations)
	} else {
		log.Println("✅ Filter verification completed")
	}
	return nil
}

// verifySubsetChain checks low ⊆ medium ⊆ high with order preserved,
// and that each result reports the density it was asked for.
func verifySubsetChain(sweep FilterSweep) error {
	if sweep.Low.Density != "low" || sweep.Medium.Density != "medium" || sweep.High.Density != "high" {
		return fmt.Errorf("density echo mismatch: got %q/%q/%q",
			sweep.Low.Density, sweep.Medium.Density, sweep.High.Density)
	}

	if len(sweep.Low.Suggestions) > len(sweep.Medium.Suggestions) {
		return fmt.Errorf("low kept more suggestions (%d) than medium (%d)",
			len(sweep.Low.Suggestions), len(sweep.Medium.Suggestions))
	}
	if len(sweep.Medium.Suggestions) > len(sweep.High.Suggestions) {
		return fmt.Errorf("medium kept more suggestions (%d) than high (%d)",
			len(sweep.Medium.Suggestions), len(sweep.High.Suggestions))
	}
	if len(sweep.High.Suggestions) > sweep.BatchSize {
		return fmt.Errorf("high kept %d suggestions from a batch of %d",
			len(sweep.High.Suggestions), sweep.BatchSize)
	}

	if err := verifySubsequence(sweep.Low.Suggestions, sweep.Medium.Suggestions); err != nil {
		return fmt.Errorf("low not a subsequence of medium: %w", err)
	}
	if err := verifySubsequence(sweep.Medium.Suggestions, sweep.High.Suggestions); err != nil {
		return fmt.Errorf("medium not a subsequence of high: %w", err)
	}
	return nil
}

// verifySubsequence checks that sub appears within full in order.
func verifySubsequence(sub, full []SuggestionItem) error {
	j := 0
	for _, item := range sub {
		found := false
		for j < len(full) {
			if full[j].ID == item.ID {
				found = true
				j++
				break
			}
			j++
		}
		if !found {
			return fmt.Errorf("suggestion %s out of order or missing", item.ID)
		}
	}
	return nil
}

// displayTopSections shows which sections the service surfaced most.
func displayTopSections(layouts []SessionLayout, verbose bool) {
	counts := make(map[string]int)
	for _, sl := range layouts {
		for _, section := range sl.Layout.Visible {
			counts[section.ID]++
		}
	}

	type sectionCount struct {
		id    string
		count int
	}
	sorted := make([]sectionCount, 0, len(counts))
	for id, count := range counts {
		sorted = append(sorted, sectionCount{id, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].id < sorted[j].id
	})

	topN := 10
	if len(sorted) < topN {
		topN = len(sorted)
	}

	log.Printf("📌 Top %d visible sections across %d layouts:", topN, len(layouts))
	for i := 0; i < topN; i++ {
		log.Printf("   %d. %s - visible in %d layouts", i+1, sorted[i].id, sorted[i].count)
	}

	if verbose {
		densities := make(map[string]int)
		planned := 0
		for _, sl := range layouts {
			densities[sl.Layout.SuggestionDensity]++
			if sl.Layout.PlanApplied {
				planned++
			}
		}
		log.Printf(`📊 Layout statistics:
   Densities: low=%d medium=%d high=%d
   Plan applied: %d/%d
`, densities["low"], densities["medium"], densities["high"], planned, len(layouts))
	}
}
