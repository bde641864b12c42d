// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/medvane/wardboard/internal/domain/types"
	"github.com/medvane/wardboard/internal/session"
)

// SessionDependencies defines the interface for session lifecycle operations.
type SessionDependencies interface {
	OpenSession(ctx context.Context, specialty string) (types.SessionInfo, error)
	CloseSession(ctx context.Context, id string) bool
}

// SessionsHandler handles session lifecycle requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// sessionRequest mirrors the OpenAPI schema for POST /v1/sessions.
type sessionRequest struct {
	Specialty string `json:"specialty"`
}

// HandleOpenSession handles POST /v1/sessions requests.
func (h *SessionsHandler) HandleOpenSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.open_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	// An empty body is allowed; the session then uses catalog defaults.
	var req sessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
			return
		}
	}

	info, err := h.deps.OpenSession(r.Context(), req.Specialty)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionLimit):
			writeError(w, http.StatusTooManyRequests, "session_limit", err)
		case errors.Is(err, session.ErrRegistryClosed):
			writeError(w, http.StatusServiceUnavailable, "shutting_down", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// HandleCloseSession handles DELETE /v1/sessions/{id} requests.
func (h *SessionsHandler) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.close_session"
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	if !h.deps.CloseSession(r.Context(), id) {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%s: %w", op, ErrSessionNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
