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

// InteractionDependencies defines the interface for interaction intake.
type InteractionDependencies interface {
	RecordInteraction(ctx context.Context, sessionID, featureID, action string) (types.InteractionAck, bool)
}

// InteractionsHandler handles interaction requests.
type InteractionsHandler struct {
	deps InteractionDependencies
}

// NewInteractionsHandler creates a new interactions handler.
func NewInteractionsHandler(deps InteractionDependencies) *InteractionsHandler {
	return &InteractionsHandler{deps: deps}
}

// interactionRequest mirrors the OpenAPI schema for POST /v1/sessions/{id}/interactions.
type interactionRequest struct {
	FeatureID string `json:"feature_id"`
	Action    string `json:"action"`
}

func (i interactionRequest) validate() error {
	switch {
	case strings.TrimSpace(i.FeatureID) == "":
		return errors.New("missing feature_id")
	case strings.TrimSpace(i.Action) == "":
		return errors.New("missing action")
	}
	switch i.Action {
	case "view_start", "view_end", "scrolled_past":
		return nil
	}
	return errors.New("invalid action; must be view_start, view_end or scrolled_past")
}

// HandleInteraction handles POST /v1/sessions/{id}/interactions requests.
// Interactions are telemetry, so anything past validation answers 202.
func (h *InteractionsHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	const op = "api.interaction"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	ack, ok := h.deps.RecordInteraction(r.Context(), id, req.FeatureID, req.Action)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%s: %w", op, ErrSessionNotFound))
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}
