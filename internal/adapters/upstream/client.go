// Package upstream provides HTTP adapters for the MAPE-K adaptation engine:
// a plan client guarded by a circuit breaker and a rate-limited feedback
// emitter. Both speak the engine's wire formats and shield callers from its
// availability.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/medvane/wardboard/internal/domain/model"
	"github.com/medvane/wardboard/pkg/logger"
	"github.com/medvane/wardboard/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultClientTimeout      = 10 * time.Second
	defaultBreakerMaxRequests = 3
	defaultBreakerInterval    = 60 * time.Second
	defaultBreakerTimeout     = 30 * time.Second

	planPath        = "/mape-k/dashboard/plan"
	patientPlanPath = "/mape-k/adaptation/latest"
)

// breakerTripRequests and breakerTripRatio decide when the breaker opens:
// at least this many requests in the window with this failure share.
const (
	breakerTripRequests = 3
	breakerTripRatio    = 0.6
)

// Client fetches layout plans from the adaptation engine.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	defaultDensity model.Density

	breakerMaxRequests uint32
	breakerInterval    time.Duration
	breakerTimeout     time.Duration
	breaker            *gobreaker.CircuitBreaker

	logger logger.Logger
}

// NewClient creates a plan client for the engine at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		httpClient:         &http.Client{Timeout: defaultClientTimeout},
		defaultDensity:     model.DensityHigh,
		breakerMaxRequests: defaultBreakerMaxRequests,
		breakerInterval:    defaultBreakerInterval,
		breakerTimeout:     defaultBreakerTimeout,
		logger:             logger.Get().Named("upstream"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	// Build the breaker after options so tuning applies
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mape-k",
		MaxRequests: c.breakerMaxRequests,
		Interval:    c.breakerInterval,
		Timeout:     c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= breakerTripRequests && failureRatio >= breakerTripRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, breakerStateValue(to))
			c.logger.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})

	return c
}

// breakerStateValue maps breaker states onto gauge values.
func breakerStateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateOpen:
		return 2
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 0
	}
}

// FetchPlan retrieves the current dashboard layout plan.
// A nil plan with a nil error means the engine has no plan yet; callers fall
// back to catalog defaults. Errors cover transport failures, unexpected
// statuses, and an open breaker, and callers keep their last good plan.
func (c *Client) FetchPlan(ctx context.Context) (*model.Plan, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchPlan(ctx)
	})
	metrics.RecordPlanFetchLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordErrorByComponent("upstream", "plan_fetch")
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("fetch plan: %w", err)
	}

	plan, _ := result.(*model.Plan)
	return plan, nil
}

// FetchPatientPlan retrieves the latest patient-detail adaptation for one
// patient. Same nil-plan and error semantics as FetchPlan.
func (c *Client) FetchPatientPlan(ctx context.Context, patientID string) (*model.PatientPlan, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchPatientPlan(ctx, patientID)
	})

	if err != nil {
		metrics.RecordErrorByComponent("upstream", "patient_plan_fetch")
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("fetch patient plan: %w", err)
	}

	plan, _ := result.(*model.PatientPlan)
	return plan, nil
}

// planEntryPayload mirrors one feature_priority element on the wire.
type planEntryPayload struct {
	ID           string  `json:"id"`
	Position     int     `json:"position"`
	Size         string  `json:"size"`
	UsageCount   int     `json:"usage_count"`
	DailyAverage float64 `json:"daily_average"`
}

// planPayload mirrors the engine's dashboard plan response.
type planPayload struct {
	FeaturePriority   []planEntryPayload `json:"feature_priority"`
	HiddenFeatures    []string           `json:"hidden_features"`
	SuggestionDensity string             `json:"suggestion_density"`
	Explanation       string             `json:"explanation"`
}

// patientPlanPayload mirrors the engine's patient adaptation response.
type patientPlanPayload struct {
	PlanJSON struct {
		Order             []string `json:"order"`
		SuggestionDensity string   `json:"suggestion_density"`
		Explanation       string   `json:"explanation"`
	} `json:"plan_json"`
}

func (c *Client) fetchPlan(ctx context.Context) (*model.Plan, error) {
	body, ok, err := c.get(ctx, c.baseURL+planPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil // no plan published yet
	}

	var payload planPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}

	plan := &model.Plan{
		FeaturePriority:   make([]model.FeatureEntry, 0, len(payload.FeaturePriority)),
		HiddenFeatures:    payload.HiddenFeatures,
		SuggestionDensity: c.parseDensity(ctx, payload.SuggestionDensity),
		Explanation:       payload.Explanation,
		FetchedAt:         time.Now(),
	}
	for _, e := range payload.FeaturePriority {
		// Entries without an id cannot be matched to a section; drop them.
		if strings.TrimSpace(e.ID) == "" {
			continue
		}
		plan.FeaturePriority = append(plan.FeaturePriority, model.FeatureEntry{
			ID:           strings.TrimSpace(e.ID),
			Position:     e.Position,
			Size:         model.ParseSize(e.Size),
			UsageCount:   e.UsageCount,
			DailyAverage: e.DailyAverage,
		})
	}
	return plan, nil
}

func (c *Client) fetchPatientPlan(ctx context.Context, patientID string) (*model.PatientPlan, error) {
	u := c.baseURL + patientPlanPath + "?patient_id=" + url.QueryEscape(patientID)
	body, ok, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var payload patientPlanPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}

	return &model.PatientPlan{
		Order:             payload.PlanJSON.Order,
		SuggestionDensity: c.parseDensity(ctx, payload.PlanJSON.SuggestionDensity),
		Explanation:       payload.PlanJSON.Explanation,
		FetchedAt:         time.Now(),
	}, nil
}

// get performs a GET and reads the body. The bool reports whether a plan
// body is present: 404 and empty or null bodies mean "no plan".
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, false, nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}
	return trimmed, true, nil
}

// parseDensity applies the configured fallback for unknown density strings.
func (c *Client) parseDensity(ctx context.Context, s string) model.Density {
	d, ok := model.ParseDensity(s)
	if !ok {
		if s != "" {
			c.logger.Debug(ctx, "unknown suggestion density in plan, using default",
				logger.String("density", s),
				logger.String("default", string(c.defaultDensity)),
			)
		}
		return c.defaultDensity
	}
	return d
}
