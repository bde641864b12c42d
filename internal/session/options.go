// Package session owns per-dashboard-session state: the plan refresh loop,
// interaction tracking, and the registry of live sessions.
package session

import (
	"time"

	"github.com/medvane/wardboard/internal/domain/model"
	"github.com/medvane/wardboard/internal/domain/priority"
	"github.com/medvane/wardboard/internal/domain/tracking"
)

// Option applies a configuration option to a Controller.
type Option func(*Controller)

// WithRefreshInterval sets the plan poll cadence.
func WithRefreshInterval(interval time.Duration) Option {
	return func(c *Controller) {
		if interval > 0 {
			c.refreshInterval = interval
		}
	}
}

// WithSections sets the section catalog the controller lays out.
func WithSections(sections []model.Section) Option {
	return func(c *Controller) {
		if len(sections) > 0 {
			c.sections = sections
		}
	}
}

// WithResolver sets the specialty priority resolver.
func WithResolver(resolver *priority.Resolver) Option {
	return func(c *Controller) {
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// WithTracker sets the interaction tracker.
func WithTracker(tracker tracking.Tracker) Option {
	return func(c *Controller) {
		if tracker != nil {
			c.tracker = tracker
		}
	}
}

// WithPlanSharer sets the store holding the shared warm-start plan.
func WithPlanSharer(sharer PlanSharer) Option {
	return func(c *Controller) {
		if sharer != nil {
			c.sharer = sharer
		}
	}
}

// WithDefaultDensity sets the suggestion density used when no plan sets one.
func WithDefaultDensity(density model.Density) Option {
	return func(c *Controller) {
		switch density {
		case model.DensityLow, model.DensityMedium, model.DensityHigh:
			c.defaultDensity = density
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// RegistryOption applies a configuration option to the Registry.
type RegistryOption func(*Registry)

// WithMaxSessions caps the number of concurrently live sessions.
func WithMaxSessions(limit int) RegistryOption {
	return func(r *Registry) {
		if limit > 0 {
			r.maxSessions = limit
		}
	}
}

// WithIdleTTL sets how long a session may go untouched before the sweep
// expires it.
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.idleTTL = ttl
		}
	}
}

// WithSweepInterval sets the idle sweep cadence.
func WithSweepInterval(interval time.Duration) RegistryOption {
	return func(r *Registry) {
		if interval > 0 {
			r.sweepInterval = interval
		}
	}
}

// WithControllerOptions sets options passed to every controller the
// registry opens.
func WithControllerOptions(opts ...Option) RegistryOption {
	return func(r *Registry) {
		r.ctrlOpts = append(r.ctrlOpts, opts...)
	}
}

// WithRegistryClock overrides the registry time source, mainly for tests.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}
