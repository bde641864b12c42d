// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/medvane/wardboard/internal/domain/types"
)

// LayoutDependencies defines the interface for layout reads.
type LayoutDependencies interface {
	SessionLayout(ctx context.Context, id string) (types.LayoutResponse, bool)
}

// LayoutHandler handles layout requests.
type LayoutHandler struct {
	deps LayoutDependencies
}

// NewLayoutHandler creates a new layout handler.
func NewLayoutHandler(deps LayoutDependencies) *LayoutHandler {
	return &LayoutHandler{deps: deps}
}

// HandleGetLayout handles GET /v1/sessions/{id}/layout requests.
func (h *LayoutHandler) HandleGetLayout(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_layout"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	resp, ok := h.deps.SessionLayout(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%s: %w", op, ErrSessionNotFound))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
