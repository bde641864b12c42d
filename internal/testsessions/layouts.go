package testsessions

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
)

// SessionLayout pairs a fetched layout with the session that produced it.
type SessionLayout struct {
	SessionID string `json:"session_id"`
	Specialty string `json:"specialty"`
	Layout    Layout `json:"layout"`
}

// FilterSweep holds one suggestion batch filtered at every density.
type FilterSweep struct {
	SessionID string       `json:"session_id"`
	BatchSize int          `json:"batch_size"`
	Low       FilterResult `json:"low"`
	Medium    FilterResult `json:"medium"`
	High      FilterResult `json:"high"`
}

// fetchLayouts retrieves the current layout for every opened session.
func fetchLayouts(ctx context.Context, config *Config, sessions []Session, stats *Stats) ([]SessionLayout, error) {
	log.Printf("📐 Fetching layouts for %d sessions with %d workers...", len(sessions), config.Workers)

	client := newHTTPClient(config.Timeout)

	layouts := make([]SessionLayout, len(sessions))
	var (
		fetched int64
		failed  int64
	)

	workers := minInt(config.Workers, len(sessions))
	forEachIndex(ctx, workers, len(sessions), func(i int) {
		session := sessions[i]
		if session.SessionID == "" {
			return
		}
		url := config.BaseURL + "/v1/sessions/" + session.SessionID + "/layout"
		resp, err := client.Get(ctx, url)
		if err != nil {
			atomic.AddInt64(&failed, 1)
			if config.Verbose {
				log.Printf("⚠️  Failed to fetch layout for %s: %v", session.SessionID, err)
			}
			return
		}
		data, err := readResponseBody(resp)
		if err != nil || resp.StatusCode != StatusOK {
			atomic.AddInt64(&failed, 1)
			return
		}
		var layout Layout
		if err := unmarshalJSON(data, &layout); err != nil {
			atomic.AddInt64(&failed, 1)
			return
		}
		layouts[i] = SessionLayout{
			SessionID: session.SessionID,
			Specialty: session.Specialty,
			Layout:    layout,
		}
		atomic.AddInt64(&fetched, 1)
	})

	// Filter out empty entries (failed retrievals)
	valid := make([]SessionLayout, 0, len(layouts))
	for _, sl := range layouts {
		if sl.SessionID != "" {
			valid = append(valid, sl)
		}
	}

	log.Printf(`✅ Layout retrieval completed:
   Fetched: %d
   Failed: %d
`, len(valid), int(atomic.LoadInt64(&failed)))

	if len(valid) == 0 {
		return nil, fmt.Errorf("no layouts could be fetched")
	}
	return valid, nil
}

// filterAtDensities runs the same suggestion batch through the filter at
// every density level so the subset chain can be checked afterwards.
func filterAtDensities(ctx context.Context, config *Config, sessions []Session, stats *Stats) []FilterSweep {
	log.Printf("🔎 Sweeping suggestion filter across densities...")

	client := newHTTPClient(config.Timeout)

	sweeps := make([]FilterSweep, 0, len(sessions))
	densities := []string{"low", "medium", "high"}

	for i, session := range sessions {
		if session.SessionID == "" {
			continue
		}
		batch := generateSuggestionBatch(config.SuggestionSize, i)
		url := config.BaseURL + "/v1/sessions/" + session.SessionID + "/suggestions/filter"

		sweep := FilterSweep{SessionID: session.SessionID, BatchSize: len(batch)}
		ok := true
		for _, density := range densities {
			result, err := filterOnce(ctx, client, url+"?density="+density, batch)
			if err != nil {
				ok = false
				if config.Verbose {
					log.Printf("⚠️  Filter at %s failed for %s: %v", density, session.SessionID, err)
				}
				break
			}
			switch density {
			case "low":
				sweep.Low = result
			case "medium":
				sweep.Medium = result
			case "high":
				sweep.High = result
			}
		}
		if ok {
			sweeps = append(sweeps, sweep)
			stats.FiltersChecked++
		}
	}

	log.Printf("✅ Filter sweep completed for %d sessions", len(sweeps))
	return sweeps
}

// filterOnce posts one batch at one density and decodes the result.
func filterOnce(ctx context.Context, client *HTTPClient, url string, batch []SuggestionItem) (FilterResult, error) {
	body := map[string]interface{}{"suggestions": batch}
	resp, err := client.Post(ctx, url, body)
	if err != nil {
		return FilterResult{}, err
	}
	data, err := readResponseBody(resp)
	if err != nil {
		return FilterResult{}, err
	}
	if resp.StatusCode != StatusOK {
		return FilterResult{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var result FilterResult
	if err := unmarshalJSON(data, &result); err != nil {
		return FilterResult{}, err
	}
	return result, nil
}
