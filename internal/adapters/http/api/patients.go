// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/medvane/wardboard/internal/adapters/upstream"
	"github.com/medvane/wardboard/internal/domain/types"
)

// PatientDependencies defines the interface for patient layout reads.
type PatientDependencies interface {
	PatientLayout(ctx context.Context, patientID string) (types.PatientLayoutResponse, error)
}

// PatientsHandler handles patient layout requests.
type PatientsHandler struct {
	deps PatientDependencies
}

// NewPatientsHandler creates a new patients handler.
func NewPatientsHandler(deps PatientDependencies) *PatientsHandler {
	return &PatientsHandler{deps: deps}
}

// HandleGetPatientLayout handles GET /v1/patients/{id}/layout requests.
func (h *PatientsHandler) HandleGetPatientLayout(w http.ResponseWriter, r *http.Request) {
	const op = "api.patient_layout"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	resp, err := h.deps.PatientLayout(r.Context(), id)
	if err != nil {
		if errors.Is(err, upstream.ErrUnavailable) {
			writeError(w, http.StatusBadGateway, "upstream_unavailable", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
