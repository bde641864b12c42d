// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Durations are expressed in
// milliseconds so flat env and YAML keys stay plain integers.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// UpstreamBaseURL points at the MAPE-K adaptation engine.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// UpstreamTimeoutMS bounds individual upstream HTTP calls.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// RefreshIntervalMS sets the layout plan polling period per session.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// SessionIdleTTLMS is how long an untouched session survives before reaping.
	SessionIdleTTLMS int `koanf:"session_idle_ttl_ms"`

	// MaxSessions caps concurrently active adaptation sessions.
	MaxSessions int `koanf:"max_sessions"`

	// SignalQueueSize bounds the in-memory outbound feedback queue.
	SignalQueueSize int `koanf:"signal_queue_size"`

	// EmitWorkerCount sets the number of upstream emit workers.
	EmitWorkerCount int `koanf:"emit_worker_count"`

	// EmitRatePerSec and EmitBurst shape the outbound feedback rate limit.
	EmitRatePerSec float64 `koanf:"emit_rate_per_sec"`
	EmitBurst      int     `koanf:"emit_burst"`

	// BreakerMaxRequests, BreakerIntervalMS, and BreakerTimeoutMS tune the
	// upstream circuit breaker.
	BreakerMaxRequests int `koanf:"breaker_max_requests"`
	BreakerIntervalMS  int `koanf:"breaker_interval_ms"`
	BreakerTimeoutMS   int `koanf:"breaker_timeout_ms"`

	// PatientPlanCacheSize and PatientPlanTTLMS configure the patient plan cache.
	PatientPlanCacheSize int `koanf:"patient_plan_cache_size"`
	PatientPlanTTLMS     int `koanf:"patient_plan_ttl_ms"`

	// MaxSuggestionBatch caps the suggestion list accepted by the filter endpoint.
	MaxSuggestionBatch int `koanf:"max_suggestion_batch"`

	// SuggestionDedupeSize sets the size of the feedback deduplication cache.
	SuggestionDedupeSize int `koanf:"suggestion_dedupe_size"`

	// DefaultDensity applies when a plan names no suggestion density: low,
	// medium, or high.
	DefaultDensity string `koanf:"default_density"`
}

// New creates a Config using defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		UpstreamBaseURL:      "http://localhost:8000",
		UpstreamTimeoutMS:    10_000,
		RefreshIntervalMS:    300_000,
		SessionIdleTTLMS:     1_800_000,
		MaxSessions:          10_000,
		SignalQueueSize:      100_000,
		EmitWorkerCount:      runtime.NumCPU() * 2,
		EmitRatePerSec:       50,
		EmitBurst:            100,
		BreakerMaxRequests:   3,
		BreakerIntervalMS:    60_000,
		BreakerTimeoutMS:     30_000,
		PatientPlanCacheSize: 10_000,
		PatientPlanTTLMS:     300_000,
		MaxSuggestionBatch:   500,
		SuggestionDedupeSize: 100_000,
		DefaultDensity:       "high",
	}
	return c
}
