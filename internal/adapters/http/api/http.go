// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/medvane/wardboard/internal/domain/dedupe"
	"github.com/medvane/wardboard/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Session lifecycle.
	OpenSession(ctx context.Context, specialty string) (types.SessionInfo, error)
	CloseSession(ctx context.Context, id string) bool

	// Per-session reads and interaction intake.
	SessionLayout(ctx context.Context, id string) (types.LayoutResponse, bool)
	RecordInteraction(ctx context.Context, sessionID, featureID, action string) (types.InteractionAck, bool)
	FilterSuggestions(ctx context.Context, sessionID string, items []types.SuggestionItem, density string) (types.FilterResponse, bool)
	RecordNavigation(ctx context.Context, sessionID, patientID, fromSection, toSection string) bool

	// Cross-session operations.
	SubmitFeedback(ctx context.Context, suggestionID, action, patientID string) bool
	PatientLayout(ctx context.Context, patientID string) (types.PatientLayoutResponse, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	sessionsHandler     *SessionsHandler
	layoutHandler       *LayoutHandler
	interactionsHandler *InteractionsHandler
	suggestionsHandler  *SuggestionsHandler
	navigationHandler   *NavigationHandler
	patientsHandler     *PatientsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxSuggestionBatch int) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		sessionsHandler:     NewSessionsHandler(deps),
		layoutHandler:       NewLayoutHandler(deps),
		interactionsHandler: NewInteractionsHandler(deps),
		suggestionsHandler:  NewSuggestionsHandler(deps, maxSuggestionBatch),
		navigationHandler:   NewNavigationHandler(deps),
		patientsHandler:     NewPatientsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux. Patterns carry the method, so
// the mux answers 405 for wrong methods before any handler runs.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /v1/sessions", MetricsMiddleware(s.sessionsHandler.HandleOpenSession, "sessions_open"))
	mux.HandleFunc("DELETE /v1/sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleCloseSession, "sessions_close"))
	mux.HandleFunc("GET /v1/sessions/{id}/layout", MetricsMiddleware(s.layoutHandler.HandleGetLayout, "layout"))
	mux.HandleFunc("POST /v1/sessions/{id}/interactions", MetricsMiddleware(s.interactionsHandler.HandleInteraction, "interactions"))
	mux.HandleFunc("POST /v1/sessions/{id}/suggestions/filter", MetricsMiddleware(s.suggestionsHandler.HandleFilterSuggestions, "suggestions_filter"))
	mux.HandleFunc("POST /v1/suggestions/feedback", MetricsMiddleware(s.suggestionsHandler.HandleSubmitFeedback, "suggestions_feedback"))
	mux.HandleFunc("POST /v1/sessions/{id}/navigation", MetricsMiddleware(s.navigationHandler.HandleNavigation, "navigation"))
	mux.HandleFunc("GET /v1/patients/{id}/layout", MetricsMiddleware(s.patientsHandler.HandleGetPatientLayout, "patient_layout"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
