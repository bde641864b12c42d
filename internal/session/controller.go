// Package session owns per-dashboard-session state: the plan refresh loop,
// interaction tracking, and the registry of live sessions.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/medvane/wardboard/internal/domain/catalog"
	"github.com/medvane/wardboard/internal/domain/layout"
	"github.com/medvane/wardboard/internal/domain/model"
	"github.com/medvane/wardboard/internal/domain/priority"
	"github.com/medvane/wardboard/internal/domain/tracking"
	"github.com/medvane/wardboard/pkg/logger"
	"github.com/medvane/wardboard/pkg/metrics"
)

// Default controller configuration constants.
const (
	defaultRefreshInterval = 5 * time.Minute
)

// PlanFetcher retrieves the current dashboard plan from the upstream.
type PlanFetcher interface {
	FetchPlan(ctx context.Context) (*model.Plan, error)
}

// Enqueuer accepts outbound feedback items for asynchronous delivery.
type Enqueuer interface {
	Enqueue(ctx context.Context, it model.Outbound) bool
}

// PlanSharer holds the plan shared across sessions for warm starts.
type PlanSharer interface {
	LastGood(ctx context.Context) *model.Plan
	SetLastGood(ctx context.Context, plan *model.Plan)
}

// View is one session's rendered layout plus the plan context it was
// derived from.
type View struct {
	Layout      model.LayoutResult
	Density     model.Density
	Explanation string
	PlanApplied bool
	RefreshedAt time.Time // zero when no plan is applied
}

// Controller drives the adaptation loop for a single dashboard session.
// It polls the upstream plan on a ticker, swaps the session's plan
// wholesale on success, and keeps the last good plan on failure. Layouts
// are derived on demand from whatever plan is current.
type Controller struct {
	id        string
	specialty string

	fetcher PlanFetcher
	queue   Enqueuer
	sharer  PlanSharer
	tracker tracking.Tracker

	sections        []model.Section
	resolver        *priority.Resolver
	refreshInterval time.Duration
	defaultDensity  model.Density
	now             func() time.Time

	// fetchSeq orders fetches so a slow response can never overwrite a
	// newer one.
	fetchSeq atomic.Uint64

	mu   sync.RWMutex
	plan *model.Plan

	started  bool
	stopped  bool
	cancel   context.CancelFunc
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewController creates a session controller. The context is used to read
// the shared warm-start plan; the refresh loop starts on Start.
func NewController(ctx context.Context, id, specialty string, fetcher PlanFetcher, queue Enqueuer, opts ...Option) *Controller {
	c := &Controller{
		id:              id,
		specialty:       specialty,
		fetcher:         fetcher,
		queue:           queue,
		refreshInterval: defaultRefreshInterval,
		defaultDensity:  model.DensityHigh,
		now:             time.Now,
		done:            make(chan struct{}),
		logger:          logger.Get().Named("session"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.tracker == nil {
		c.tracker = tracking.NewInMemoryTracker()
	}
	if c.sections == nil {
		c.sections = catalog.Sections()
	}
	if c.resolver == nil {
		c.resolver = priority.NewResolver(
			priority.WithSpecialtyPriorities(catalog.SpecialtyPriorities()),
			priority.WithSectionDefaults(catalog.DefaultPriorities()),
		)
	}

	// Warm-start from the plan the fleet last applied, so the first render
	// does not regress to defaults while the initial fetch is in flight.
	if c.sharer != nil {
		c.plan = c.sharer.LastGood(ctx)
	}

	return c
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Specialty returns the session's clinician specialty, possibly empty.
func (c *Controller) Specialty() string { return c.specialty }

// RefreshInterval returns the plan poll cadence.
func (c *Controller) RefreshInterval() time.Duration { return c.refreshInterval }

// Start launches the refresh loop: one immediate fetch, then one per tick.
// Calling Start on a started or stopped controller is a no-op.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(runCtx)
}

// Stop cancels the refresh loop and discards any in-flight fetch.
// Safe to call more than once, and before Start.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		cancel := c.cancel
		c.mu.Unlock()

		if cancel == nil {
			// Never started; nothing to wait for.
			close(c.done)
			return
		}
		cancel()
		<-c.done
	})
}

// run owns the ticker. Fetches run in their own goroutines so a slow
// upstream cannot delay the next tick; the sequence guard in install
// discards whichever response loses the race.
func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	// Immediate first fetch so a fresh session converges without waiting a
	// full interval.
	go c.refresh(ctx)

	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go c.refresh(ctx)
		}
	}
}

// refresh performs one fetch-and-install cycle.
func (c *Controller) refresh(ctx context.Context) {
	seq := c.nextSeq()
	plan, err := c.fetcher.FetchPlan(ctx)
	c.install(ctx, seq, plan, err)
}

// nextSeq issues the next fetch sequence number.
func (c *Controller) nextSeq() uint64 {
	return c.fetchSeq.Add(1)
}

// install applies a fetch result if its sequence is still the newest.
// Success replaces the plan wholesale, an upstream "no plan" installs nil
// so catalog defaults apply, and a failure keeps the last good plan.
func (c *Controller) install(ctx context.Context, seq uint64, plan *model.Plan, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.fetchSeq.Load() {
		metrics.RecordPlanFetch("stale")
		metrics.RecordPlanStaleDiscard()
		c.logger.Debug(ctx, "discarding stale plan response",
			logger.String("session_id", c.id),
		)
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Session is shutting down; nothing to record.
			return
		}
		metrics.RecordPlanFetch("error")
		metrics.RecordPlanFallback()
		c.logger.Warn(ctx, "plan fetch failed, keeping last good plan",
			logger.String("session_id", c.id),
			logger.Error(err),
		)
		return
	}

	if plan == nil {
		metrics.RecordPlanFetch("no_plan")
		c.plan = nil
		if c.sharer != nil {
			c.sharer.SetLastGood(ctx, nil)
		}
		c.logger.Info(ctx, "no active plan, using defaults",
			logger.String("session_id", c.id),
		)
		return
	}

	c.plan = plan
	metrics.RecordPlanFetch("applied")
	metrics.UpdatePlanLastApplied(c.now().Unix())
	if c.sharer != nil {
		c.sharer.SetLastGood(ctx, plan)
	}
	c.logger.Info(ctx, "plan applied",
		logger.String("session_id", c.id),
		logger.Int("planned_sections", len(plan.FeaturePriority)),
		logger.Int("hidden_sections", len(plan.HiddenFeatures)),
	)
}

// Layout derives the session's current layout. Nothing is cached: the
// result always reflects the plan at call time.
func (c *Controller) Layout(_ context.Context) View {
	c.mu.RLock()
	plan := c.plan
	c.mu.RUnlock()

	if plan == nil && c.specialty != "" {
		return View{
			Layout:  c.resolver.LayoutFor(c.sections, c.specialty),
			Density: c.defaultDensity,
		}
	}

	view := View{
		Layout:  layout.Merge(c.sections, plan),
		Density: c.defaultDensity,
	}
	if plan != nil {
		if plan.SuggestionDensity != "" {
			view.Density = plan.SuggestionDensity
		}
		view.Explanation = plan.Explanation
		view.PlanApplied = true
		view.RefreshedAt = plan.FetchedAt
	}
	return view
}

// Density returns the suggestion density currently in effect.
func (c *Controller) Density() model.Density {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.plan != nil && c.plan.SuggestionDensity != "" {
		return c.plan.SuggestionDensity
	}
	return c.defaultDensity
}

// StartViewing opens a viewing observation for a feature.
func (c *Controller) StartViewing(ctx context.Context, featureID string) {
	c.tracker.StartViewing(ctx, featureID, c.now())
}

// StopViewing closes an observation and, when the dwell classifies to a
// signal, queues it for delivery. The second return is false for neutral
// dwells and for stops without a matching start.
func (c *Controller) StopViewing(ctx context.Context, featureID string) (model.SignalKind, bool) {
	sig, ok := c.tracker.StopViewing(ctx, featureID, c.now())
	if !ok {
		metrics.RecordNeutralInteraction()
		return "", false
	}
	c.send(ctx, sig)
	return sig.Kind, true
}

// ScrolledPast queues the weak negative signal for a feature.
func (c *Controller) ScrolledPast(ctx context.Context, featureID string) model.SignalKind {
	sig := c.tracker.ScrolledPast(ctx, featureID, c.now())
	c.send(ctx, sig)
	return sig.Kind
}

// OpenViews returns the number of open observations in this session.
func (c *Controller) OpenViews() int {
	return c.tracker.OpenCount()
}

// send enriches a signal with session context and hands it to the queue.
// Enqueue never blocks; a full queue drops the signal.
func (c *Controller) send(ctx context.Context, sig model.FeedbackSignal) {
	sig.ID = uuid.NewString()
	sig.Specialty = c.specialty

	metrics.RecordSignal(string(sig.Kind))
	if !c.queue.Enqueue(ctx, model.NewOutboundSignal(sig)) {
		c.logger.Warn(ctx, "outbound queue full, dropping signal",
			logger.String("session_id", c.id),
			logger.String("feature_id", sig.FeatureID),
			logger.String("kind", string(sig.Kind)),
		)
	}
}
