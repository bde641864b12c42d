package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/medvane/wardboard/internal/domain/model"
	"github.com/medvane/wardboard/pkg/logger"
)

// Default emitter configuration constants.
const (
	defaultEmitterTimeout = 10 * time.Second
	defaultEmitRate       = 50  // emits per second
	defaultEmitBurst      = 100 // burst allowance

	banditFeedbackPath = "/mape-k/bandit/feedback"
	navigationPath     = "/monitor/log-navigation"
	feedbackPath       = "/feedback"
)

// Emitter posts engagement signals, navigation events, and suggestion
// feedback to the adaptation engine. Every emit waits on a shared rate
// limiter first so feedback bursts cannot flood the engine.
type Emitter struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Logger
}

// NewEmitter creates a feedback emitter for the engine at baseURL.
func NewEmitter(baseURL string, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultEmitterTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultEmitRate), defaultEmitBurst),
		logger:     logger.Get().Named("emitter"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// EmitSignal reports one classified engagement signal to the bandit.
// Parameters travel query-encoded; an empty specialty is omitted.
func (e *Emitter) EmitSignal(ctx context.Context, sig model.FeedbackSignal) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("feature_key", sig.FeatureID)
	q.Set("success", strconv.FormatBool(sig.Success))
	q.Set("weight", strconv.FormatFloat(sig.Weight, 'f', -1, 64))
	if sig.Specialty != "" {
		q.Set("specialty", sig.Specialty)
	}

	return e.post(ctx, e.baseURL+banditFeedbackPath+"?"+q.Encode(), nil)
}

// navigationPayload mirrors the engine's navigation log schema.
type navigationPayload struct {
	PatientID   string `json:"patient_id,omitempty"`
	FromSection string `json:"from_section,omitempty"`
	ToSection   string `json:"to_section"`
}

// EmitNavigation reports a section-to-section navigation event.
func (e *Emitter) EmitNavigation(ctx context.Context, nav model.NavigationEvent) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(navigationPayload{
		PatientID:   nav.PatientID,
		FromSection: nav.FromSection,
		ToSection:   nav.ToSection,
	})
	if err != nil {
		return fmt.Errorf("encode navigation: %w", err)
	}

	return e.post(ctx, e.baseURL+navigationPath, body)
}

// suggestionFeedbackPayload mirrors the engine's feedback schema.
type suggestionFeedbackPayload struct {
	SuggestionID string `json:"suggestion_id"`
	Action       string `json:"action"`
	PatientID    string `json:"patient_id,omitempty"`
}

// EmitSuggestionFeedback reports a clinician's verdict on one suggestion.
func (e *Emitter) EmitSuggestionFeedback(ctx context.Context, fb model.SuggestionFeedback) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(suggestionFeedbackPayload{
		SuggestionID: fb.SuggestionID,
		Action:       string(fb.Action),
		PatientID:    fb.PatientID,
	})
	if err != nil {
		return fmt.Errorf("encode suggestion feedback: %w", err)
	}

	return e.post(ctx, e.baseURL+feedbackPath, body)
}

// post sends a POST, draining and closing the response body. A nil body
// sends an empty request for query-encoded endpoints.
func (e *Emitter) post(ctx context.Context, rawURL string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, reader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}
