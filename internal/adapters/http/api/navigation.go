// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/medvane/wardboard/internal/domain/types"
)

// NavigationDependencies defines the interface for navigation intake.
type NavigationDependencies interface {
	RecordNavigation(ctx context.Context, sessionID, patientID, fromSection, toSection string) bool
}

// NavigationHandler handles navigation requests.
type NavigationHandler struct {
	deps NavigationDependencies
}

// NewNavigationHandler creates a new navigation handler.
func NewNavigationHandler(deps NavigationDependencies) *NavigationHandler {
	return &NavigationHandler{deps: deps}
}

// navigationRequest mirrors the OpenAPI schema for POST /v1/sessions/{id}/navigation.
type navigationRequest struct {
	PatientID   string `json:"patient_id"`
	FromSection string `json:"from_section"`
	ToSection   string `json:"to_section"`
}

func (n navigationRequest) validate() error {
	if strings.TrimSpace(n.ToSection) == "" {
		return errors.New("missing to_section")
	}
	return nil
}

// HandleNavigation handles POST /v1/sessions/{id}/navigation requests.
func (h *NavigationHandler) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	const op = "api.navigation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	var req navigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	if !h.deps.RecordNavigation(r.Context(), id, req.PatientID, req.FromSection, req.ToSection) {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%s: %w", op, ErrSessionNotFound))
		return
	}
	writeJSON(w, http.StatusAccepted, types.AckResponse{Status: "accepted"})
}
