// Package session owns per-dashboard-session state: the plan refresh loop,
// interaction tracking, and the registry of live sessions.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medvane/wardboard/pkg/logger"
	"github.com/medvane/wardboard/pkg/metrics"
)

// Default registry configuration constants.
const (
	defaultMaxSessions   = 10_000
	defaultIdleTTL       = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// liveSession pairs a controller with its idle-tracking timestamp.
type liveSession struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry keys session controllers by UUID, enforces the session cap, and
// expires idle sessions on a sweep ticker.
type Registry struct {
	fetcher  PlanFetcher
	queue    Enqueuer
	ctrlOpts []Option

	maxSessions   int
	idleTTL       time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	mu       sync.RWMutex
	sessions map[string]*liveSession

	runCtx   context.Context
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewRegistry creates a session registry with configuration options.
func NewRegistry(fetcher PlanFetcher, queue Enqueuer, opts ...RegistryOption) *Registry {
	r := &Registry{
		fetcher:       fetcher,
		queue:         queue,
		maxSessions:   defaultMaxSessions,
		idleTTL:       defaultIdleTTL,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		sessions:      make(map[string]*liveSession),
		done:          make(chan struct{}),
		logger:        logger.Get().Named("registry"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start launches the idle sweep loop. Controllers opened after Start share
// its context, so shutting the registry down stops every refresh loop.
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started || r.stopped {
		r.mu.Unlock()
		return
	}
	r.started = true
	runCtx, cancel := context.WithCancel(ctx)
	r.runCtx = runCtx
	r.cancel = cancel
	r.mu.Unlock()

	go r.sweepLoop(runCtx)
}

// Open creates, registers, and starts a controller for a new session.
// Returns ErrSessionLimit when the cap is reached and ErrRegistryClosed
// after shutdown began.
func (r *Registry) Open(ctx context.Context, specialty string) (*Controller, error) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	if len(r.sessions) >= r.maxSessions {
		r.mu.Unlock()
		metrics.RecordSessionRejected()
		return nil, ErrSessionLimit
	}

	id := uuid.NewString()
	ctrl := NewController(ctx, id, specialty, r.fetcher, r.queue, r.ctrlOpts...)
	r.sessions[id] = &liveSession{ctrl: ctrl, lastSeen: r.now()}
	active := len(r.sessions)
	runCtx := r.runCtx
	r.mu.Unlock()

	// The refresh loop must outlive the request that opened the session.
	if runCtx == nil {
		runCtx = context.Background()
	}
	ctrl.Start(runCtx)

	metrics.RecordSessionOpened()
	metrics.UpdateSessionsActive(active)
	r.logger.Info(ctx, "session opened",
		logger.String("session_id", id),
		logger.String("specialty", specialty),
	)

	return ctrl, nil
}

// Get returns the controller for a session id and refreshes its idle TTL.
func (r *Registry) Get(_ context.Context, id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ls, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	ls.lastSeen = r.now()
	return ls.ctrl, true
}

// Close stops and removes one session. Returns false for unknown ids.
func (r *Registry) Close(ctx context.Context, id string) bool {
	r.mu.Lock()
	ls, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	active := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}

	ls.ctrl.Stop()
	metrics.RecordSessionClosed()
	metrics.UpdateSessionsActive(active)
	r.logger.Info(ctx, "session closed", logger.String("session_id", id))

	return true
}

// Count returns the number of live sessions.
func (r *Registry) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll stops the sweep loop and every live session. Called once at
// shutdown; later calls are no-ops.
func (r *Registry) CloseAll(ctx context.Context) {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		cancel := r.cancel
		sessions := r.sessions
		r.sessions = make(map[string]*liveSession)
		r.mu.Unlock()

		if cancel != nil {
			cancel()
			<-r.done
		}

		for _, ls := range sessions {
			ls.ctrl.Stop()
		}

		metrics.UpdateSessionsActive(0)
		r.logger.Info(ctx, "all sessions closed", logger.Int("count", len(sessions)))
	})
}

// sweepLoop expires idle sessions on a ticker until the context ends.
func (r *Registry) sweepLoop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep removes sessions idle past the TTL and refreshes session gauges.
func (r *Registry) sweep(ctx context.Context) {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var expired []*liveSession
	for id, ls := range r.sessions {
		if ls.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			expired = append(expired, ls)
		}
	}
	active := len(r.sessions)
	openViews := 0
	for _, ls := range r.sessions {
		openViews += ls.ctrl.OpenViews()
	}
	r.mu.Unlock()

	for _, ls := range expired {
		ls.ctrl.Stop()
		metrics.RecordSessionExpired()
		r.logger.Info(ctx, "session expired",
			logger.String("session_id", ls.ctrl.ID()),
		)
	}

	metrics.UpdateSessionsActive(active)
	metrics.UpdateTrackerOpenViews(openViews)
}
