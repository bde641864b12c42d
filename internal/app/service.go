// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	outqueue "github.com/medvane/wardboard/internal/adapters/mq/queue"
	workerpool "github.com/medvane/wardboard/internal/adapters/mq/worker"
	"github.com/medvane/wardboard/internal/adapters/plancache"
	"github.com/medvane/wardboard/internal/adapters/upstream"
	"github.com/medvane/wardboard/internal/domain/catalog"
	"github.com/medvane/wardboard/internal/domain/dedupe"
	"github.com/medvane/wardboard/internal/domain/layout"
	"github.com/medvane/wardboard/internal/domain/model"
	"github.com/medvane/wardboard/internal/domain/suggestion"
	"github.com/medvane/wardboard/internal/domain/types"
	"github.com/medvane/wardboard/internal/session"
	"github.com/medvane/wardboard/pkg/logger"
	"github.com/medvane/wardboard/pkg/metrics"
)

// Service implements the API dependencies for the adaptive dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry *session.Registry
	outbound outqueue.Queue
	pool     *workerpool.Pool
	plans    *upstream.Client
	emitter  *upstream.Emitter
	cache    plancache.Store
	deduper  dedupe.Deduper

	// Configuration
	upstreamBaseURL    string
	upstreamTimeout    time.Duration
	refreshInterval    time.Duration
	sessionIdleTTL     time.Duration
	maxSessions        int
	queueSize          int
	workerCount        int
	emitRate           float64
	emitBurst          int
	breakerMaxRequests uint32
	breakerInterval    time.Duration
	breakerTimeout     time.Duration
	patientCacheSize   int
	patientCacheTTL    time.Duration
	dedupeSize         int
	defaultDensity     model.Density

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithUpstreamBaseURL sets the MAPE-K upstream base URL.
func WithUpstreamBaseURL(baseURL string) Option {
	return func(s *Service) {
		if baseURL != "" {
			s.upstreamBaseURL = baseURL
		}
	}
}

// WithUpstreamTimeout sets the per-request timeout for upstream calls.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.upstreamTimeout = d
		}
	}
}

// WithRefreshInterval sets the per-session plan poll cadence.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshInterval = d
		}
	}
}

// WithSessionIdleTTL sets how long an untouched session survives.
func WithSessionIdleTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionIdleTTL = d
		}
	}
}

// WithMaxSessions sets the concurrent session cap.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithQueueSize sets the maximum size of the outbound feedback queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of delivery worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithEmitRate sets the outbound delivery rate limit.
func WithEmitRate(perSecond float64, burst int) Option {
	return func(s *Service) {
		if perSecond > 0 && burst > 0 {
			s.emitRate = perSecond
			s.emitBurst = burst
		}
	}
}

// WithBreakerSettings tunes the upstream circuit breaker.
func WithBreakerSettings(maxRequests uint32, interval, timeout time.Duration) Option {
	return func(s *Service) {
		if maxRequests > 0 && interval > 0 && timeout > 0 {
			s.breakerMaxRequests = maxRequests
			s.breakerInterval = interval
			s.breakerTimeout = timeout
		}
	}
}

// WithPatientCache sizes the patient plan cache.
func WithPatientCache(size int, ttl time.Duration) Option {
	return func(s *Service) {
		if size > 0 && ttl > 0 {
			s.patientCacheSize = size
			s.patientCacheTTL = ttl
		}
	}
}

// WithDedupeSize sets the size of the feedback deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDefaultDensity sets the suggestion density used when no plan names
// one. Unknown values are ignored.
func WithDefaultDensity(density string) Option {
	return func(s *Service) {
		if d, ok := model.ParseDensity(density); ok {
			s.defaultDensity = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		upstreamBaseURL:    "http://localhost:8000",
		upstreamTimeout:    10 * time.Second,
		refreshInterval:    5 * time.Minute,
		sessionIdleTTL:     30 * time.Minute,
		maxSessions:        10_000,
		queueSize:          100_000,
		workerCount:        runtime.NumCPU() * 2,
		emitRate:           50,
		emitBurst:          100,
		breakerMaxRequests: 3,
		breakerInterval:    time.Minute,
		breakerTimeout:     30 * time.Second,
		patientCacheSize:   10_000,
		patientCacheTTL:    5 * time.Minute,
		dedupeSize:         100_000,
		defaultDensity:     model.DensityHigh,
		logger:             nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting wardboard service...")

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.outbound = outqueue.NewInMemoryQueue(
		outqueue.WithCapacity(s.queueSize),
		outqueue.WithBufferSize(s.queueSize),
	)

	httpClient := &http.Client{Timeout: s.upstreamTimeout}
	s.plans = upstream.NewClient(s.upstreamBaseURL,
		upstream.WithHTTPClient(httpClient),
		upstream.WithDefaultDensity(s.defaultDensity),
		upstream.WithBreakerMaxRequests(s.breakerMaxRequests),
		upstream.WithBreakerInterval(s.breakerInterval),
		upstream.WithBreakerTimeout(s.breakerTimeout),
	)
	s.emitter = upstream.NewEmitter(s.upstreamBaseURL,
		upstream.WithEmitterHTTPClient(httpClient),
		upstream.WithEmitRate(s.emitRate, s.emitBurst),
	)

	cache, err := plancache.NewMemoryStore(
		plancache.WithCapacity(s.patientCacheSize),
		plancache.WithTTL(s.patientCacheTTL),
	)
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	s.cache = cache

	s.pool = workerpool.NewPool(s.workerCount, s.outbound, s.emitter)
	s.pool.Start(ctx)

	s.registry = session.NewRegistry(s.plans, s.outbound,
		session.WithMaxSessions(s.maxSessions),
		session.WithIdleTTL(s.sessionIdleTTL),
		session.WithControllerOptions(
			session.WithRefreshInterval(s.refreshInterval),
			session.WithPlanSharer(cache),
			session.WithDefaultDensity(s.defaultDensity),
		),
	)
	s.registry.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "wardboard service started",
		logger.String("upstream", s.upstreamBaseURL),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxSessions", s.maxSessions),
		logger.Duration("refreshInterval", s.refreshInterval),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping wardboard service...")

	// Close sessions first so refresh loops and signal producers quiesce
	// before the delivery pipeline drains.
	if s.registry != nil {
		s.registry.CloseAll(ctx)
	}
	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "wardboard service stopped")
}

// OpenSession registers a new dashboard session and starts its refresh
// loop. The specialty may be empty.
func (s *Service) OpenSession(ctx context.Context, specialty string) (types.SessionInfo, error) {
	if s.registry == nil {
		return types.SessionInfo{}, ErrNotStarted
	}

	ctrl, err := s.registry.Open(ctx, strings.ToLower(strings.TrimSpace(specialty)))
	if err != nil {
		return types.SessionInfo{}, fmt.Errorf("open session: %w", err)
	}

	return types.SessionInfo{
		SessionID:         ctrl.ID(),
		Specialty:         ctrl.Specialty(),
		RefreshIntervalMS: ctrl.RefreshInterval().Milliseconds(),
	}, nil
}

// CloseSession tears down a session. Returns false when the id is unknown.
func (s *Service) CloseSession(ctx context.Context, id string) bool {
	if s.registry == nil {
		return false
	}
	return s.registry.Close(ctx, id)
}

// SessionLayout derives the current layout for a session. The second
// return is false when the session is unknown.
func (s *Service) SessionLayout(ctx context.Context, id string) (types.LayoutResponse, bool) {
	if s.registry == nil {
		return types.LayoutResponse{}, false
	}
	ctrl, ok := s.registry.Get(ctx, id)
	if !ok {
		return types.LayoutResponse{}, false
	}
	return toLayoutResponse(ctrl.Layout(ctx)), true
}

// RecordInteraction feeds one interaction event through the session's
// tracker. The returned ack names the classified signal, or "none" when
// the event produced no signal. The second return is false when the
// session is unknown.
func (s *Service) RecordInteraction(ctx context.Context, sessionID, featureID, action string) (types.InteractionAck, bool) {
	if s.registry == nil {
		return types.InteractionAck{}, false
	}
	ctrl, ok := s.registry.Get(ctx, sessionID)
	if !ok {
		return types.InteractionAck{}, false
	}

	ack := types.InteractionAck{Status: "accepted", Signal: "none"}
	switch action {
	case "view_start":
		ctrl.StartViewing(ctx, featureID)
	case "view_end":
		if kind, classified := ctrl.StopViewing(ctx, featureID); classified {
			ack.Signal = string(kind)
		}
	case "scrolled_past":
		ack.Signal = string(ctrl.ScrolledPast(ctx, featureID))
	}
	return ack, true
}

// FilterSuggestions applies the session's density filter to a suggestion
// batch. A non-empty density overrides the session's level for this call.
// The second return is false when the session is unknown.
func (s *Service) FilterSuggestions(ctx context.Context, sessionID string, items []types.SuggestionItem, density string) (types.FilterResponse, bool) {
	if s.registry == nil {
		return types.FilterResponse{}, false
	}
	ctrl, ok := s.registry.Get(ctx, sessionID)
	if !ok {
		return types.FilterResponse{}, false
	}

	level := ctrl.Density()
	if d, valid := model.ParseDensity(density); valid {
		level = d
	}

	in := make([]model.Suggestion, 0, len(items))
	for _, it := range items {
		in = append(in, model.Suggestion{ID: it.ID, Text: it.Text, Confidence: it.Confidence})
	}
	kept := suggestion.Filter(in, level)

	out := make([]types.SuggestionItem, 0, len(kept))
	for _, sg := range kept {
		out = append(out, types.SuggestionItem{ID: sg.ID, Text: sg.Text, Confidence: sg.Confidence})
	}

	metrics.RecordSuggestionFilter(string(level), len(kept), len(items)-len(kept))
	return types.FilterResponse{Suggestions: out, Density: string(level)}, true
}

// SubmitFeedback queues an explicit suggestion verdict for delivery.
// Returns false on backpressure so the caller can roll back its
// idempotency record.
func (s *Service) SubmitFeedback(ctx context.Context, suggestionID, action, patientID string) bool {
	if s.outbound == nil {
		return false
	}
	act, ok := model.ParseFeedbackAction(action)
	if !ok {
		return false
	}
	fb := model.SuggestionFeedback{
		SuggestionID: suggestionID,
		Action:       act,
		PatientID:    patientID,
	}
	return s.outbound.Enqueue(ctx, model.NewOutboundSuggestion(fb))
}

// RecordNavigation queues a navigation event for delivery. Navigation is
// advisory telemetry: a full queue drops the event without telling the
// caller. Returns false only when the session is unknown.
func (s *Service) RecordNavigation(ctx context.Context, sessionID, patientID, fromSection, toSection string) bool {
	if s.registry == nil {
		return false
	}
	if _, ok := s.registry.Get(ctx, sessionID); !ok {
		return false
	}

	nav := model.NavigationEvent{
		PatientID:   patientID,
		FromSection: fromSection,
		ToSection:   toSection,
		At:          time.Now(),
	}
	if !s.outbound.Enqueue(ctx, model.NewOutboundNavigation(nav)) {
		s.logger.Debug(ctx, "outbound queue full, dropping navigation event",
			logger.String("session_id", sessionID),
			logger.String("to_section", toSection),
		)
	}
	return true
}

// PatientLayout resolves the section order for a patient view through the
// plan cache, falling back to the upstream on a miss. A patient without a
// recorded adaptation gets the catalog default order.
func (s *Service) PatientLayout(ctx context.Context, patientID string) (types.PatientLayoutResponse, error) {
	if s.cache == nil || s.plans == nil {
		return types.PatientLayoutResponse{}, ErrNotStarted
	}

	if plan, ok := s.cache.PatientPlan(ctx, patientID); ok {
		return s.toPatientResponse(plan, true), nil
	}

	plan, err := s.plans.FetchPatientPlan(ctx, patientID)
	if err != nil {
		return types.PatientLayoutResponse{}, fmt.Errorf("fetch patient plan: %w", err)
	}
	if plan == nil {
		ordered := layout.ApplyOrder(catalog.Sections(), nil)
		return types.PatientLayoutResponse{
			Order:             sectionIDs(ordered),
			SuggestionDensity: string(s.defaultDensity),
		}, nil
	}

	s.cache.SetPatientPlan(ctx, patientID, plan)
	return s.toPatientResponse(plan, false), nil
}

// SeenAndRecord atomically checks if a feedback key was seen and records
// it if not. Returns true if the key was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	if s.deduper == nil {
		return false
	}
	seen := s.deduper.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordFeedbackDuplicate()
	}
	return seen
}

// Unrecord removes a feedback key from the seen set, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, key string) {
	if s.deduper == nil {
		return
	}
	s.deduper.Unrecord(ctx, key)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
		"max_sessions": s.maxSessions,
	}

	if s.started {
		stats["sessions_active"] = s.registry.Count(ctx)
		stats["queue_length"] = s.outbound.Len(ctx)
		stats["patient_plans_cached"] = s.cache.Count(ctx)
		stats["feedback_keys_seen"] = s.deduper.Size()
	}

	return stats
}

// toLayoutResponse converts a session view to the wire shape.
func toLayoutResponse(v session.View) types.LayoutResponse {
	resp := types.LayoutResponse{
		Visible:           make([]types.LayoutSection, 0, len(v.Layout.Visible)),
		Hidden:            make([]types.LayoutSection, 0, len(v.Layout.Hidden)),
		SuggestionDensity: string(v.Density),
		Explanation:       v.Explanation,
		PlanApplied:       v.PlanApplied,
	}
	for _, p := range v.Layout.Visible {
		resp.Visible = append(resp.Visible, types.LayoutSection{
			ID:    p.Section.ID,
			Label: p.Section.Label,
			Size:  string(p.Size),
		})
	}
	for _, sec := range v.Layout.Hidden {
		resp.Hidden = append(resp.Hidden, types.LayoutSection{ID: sec.ID, Label: sec.Label})
	}
	if v.PlanApplied && !v.RefreshedAt.IsZero() {
		at := v.RefreshedAt
		resp.RefreshedAt = &at
	}
	return resp
}

// toPatientResponse converts a patient plan to the wire shape.
func (s *Service) toPatientResponse(plan *model.PatientPlan, cached bool) types.PatientLayoutResponse {
	ordered := layout.ApplyOrder(catalog.Sections(), plan.Order)

	density := s.defaultDensity
	if plan.SuggestionDensity != "" {
		density = plan.SuggestionDensity
	}

	return types.PatientLayoutResponse{
		Order:             sectionIDs(ordered),
		SuggestionDensity: string(density),
		Explanation:       plan.Explanation,
		Cached:            cached,
	}
}

func sectionIDs(sections []model.Section) []string {
	ids := make([]string, 0, len(sections))
	for _, s := range sections {
		ids = append(ids, s.ID)
	}
	return ids
}
