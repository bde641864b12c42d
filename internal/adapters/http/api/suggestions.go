// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/medvane/wardboard/internal/domain/dedupe"
	"github.com/medvane/wardboard/internal/domain/types"
)

// SuggestionDependencies defines the interface for suggestion filtering
// and feedback submission.
type SuggestionDependencies interface {
	dedupe.Deduper
	FilterSuggestions(ctx context.Context, sessionID string, items []types.SuggestionItem, density string) (types.FilterResponse, bool)
	SubmitFeedback(ctx context.Context, suggestionID, action, patientID string) bool
}

// SuggestionsHandler handles suggestion requests.
type SuggestionsHandler struct {
	deps     SuggestionDependencies
	maxBatch int
}

// NewSuggestionsHandler creates a new suggestions handler.
func NewSuggestionsHandler(deps SuggestionDependencies, maxBatch int) *SuggestionsHandler {
	return &SuggestionsHandler{deps: deps, maxBatch: maxBatch}
}

// filterRequest mirrors the OpenAPI schema for POST /v1/sessions/{id}/suggestions/filter.
type filterRequest struct {
	Suggestions []types.SuggestionItem `json:"suggestions"`
}

// HandleFilterSuggestions handles POST /v1/sessions/{id}/suggestions/filter requests.
// The optional density query parameter overrides the session's current density.
func (h *SuggestionsHandler) HandleFilterSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.filter_suggestions"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if h.maxBatch > 0 && len(req.Suggestions) > h.maxBatch {
		writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large", fmt.Errorf("%s: %w", op, ErrBatchTooLarge))
		return
	}
	density := r.URL.Query().Get("density")
	switch density {
	case "", "low", "medium", "high":
	default:
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: invalid density %q", op, ErrBadRequest, density))
		return
	}

	resp, ok := h.deps.FilterSuggestions(r.Context(), id, req.Suggestions, density)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%s: %w", op, ErrSessionNotFound))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// feedbackRequest mirrors the OpenAPI schema for POST /v1/suggestions/feedback.
type feedbackRequest struct {
	SuggestionID string `json:"suggestion_id"`
	Action       string `json:"action"`
	PatientID    string `json:"patient_id"`
}

func (f feedbackRequest) validate() error {
	switch {
	case strings.TrimSpace(f.SuggestionID) == "":
		return errors.New("missing suggestion_id")
	case strings.TrimSpace(f.Action) == "":
		return errors.New("missing action")
	}
	switch f.Action {
	case "accept", "ignore", "not_relevant":
		return nil
	}
	return errors.New("invalid action; must be accept, ignore or not_relevant")
}

// dedupeKey identifies a verdict for idempotency purposes. The same clinician
// accepting the same suggestion twice is one verdict, not two.
func (f feedbackRequest) dedupeKey() string {
	return f.SuggestionID + ":" + f.Action
}

// HandleSubmitFeedback handles POST /v1/suggestions/feedback requests.
func (h *SuggestionsHandler) HandleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_feedback"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.dedupeKey()) {
		writeJSON(w, http.StatusOK, types.AckResponse{Status: "ok", Duplicate: true})
		return
	}

	// Try to enqueue for async delivery
	if ok := h.deps.SubmitFeedback(r.Context(), req.SuggestionID, req.Action, req.PatientID); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.dedupeKey())
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w", op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, types.AckResponse{Status: "accepted"})
}
