// Package metrics provides Prometheus metrics for the wardboard adaptation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the wardboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Plan Metrics - What really matters for an adaptive dashboard
	planFetches       *prometheus.CounterVec
	planFetchLatency  prometheus.Histogram
	planStaleDiscards prometheus.Counter
	planFallbacks     prometheus.Counter
	planLastApplied   prometheus.Gauge

	// Upstream Health Metrics
	breakerState *prometheus.GaugeVec

	// Session Metrics - Lifecycle of adaptation sessions
	sessionsActive   prometheus.Gauge
	sessionsOpened   prometheus.Counter
	sessionsClosed   prometheus.Counter
	sessionsExpired  prometheus.Counter
	sessionsRejected prometheus.Counter

	// Interaction Metrics - Classified engagement signals
	signalsClassified   *prometheus.CounterVec
	interactionsNeutral prometheus.Counter
	trackerOpenViews    prometheus.Gauge

	// Queue Metrics - Outbound feedback queue performance
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	outboundDropped    *prometheus.CounterVec

	// Emitter Metrics - Delivery to the adaptation engine
	workerActiveCount prometheus.Gauge
	emitLatency       *prometheus.HistogramVec
	emitResults       *prometheus.CounterVec

	// Suggestion Metrics - Density filtering and feedback quality
	suggestionsKept    *prometheus.CounterVec
	suggestionsDropped *prometheus.CounterVec
	feedbackDuplicates prometheus.Counter

	// Patient Cache Metrics
	patientCacheHits   prometheus.Counter
	patientCacheMisses prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wardboard",
		subsystem:        "adaptation",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Plan Metrics - Focus on how often and how fast layout plans arrive
	m.planFetches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "plan_fetches_total",
			Help:      "Total number of layout plan fetches by outcome",
		},
		[]string{"outcome"},
	)

	m.planFetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plan_fetch_latency_milliseconds",
		Help:      "Histogram of plan fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.planStaleDiscards = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plan_stale_discards_total",
		Help:      "Total number of plan responses discarded because a newer fetch completed first",
	})

	m.planFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plan_fallbacks_total",
		Help:      "Total number of refresh cycles that kept the last good plan after a fetch failure",
	})

	m.planLastApplied = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plan_last_applied_unix",
		Help:      "Unix timestamp of the last successfully applied layout plan",
	})

	// Upstream Health Metrics - Circuit breaker state per upstream path
	m.breakerState = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_breaker_state",
			Help:      "Circuit breaker state per upstream client (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)

	// Session Metrics - Lifecycle indicators
	m.sessionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_active",
		Help:      "Current number of active adaptation sessions",
	})

	m.sessionsOpened = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_opened_total",
		Help:      "Total number of adaptation sessions opened",
	})

	m.sessionsClosed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_closed_total",
		Help:      "Total number of adaptation sessions closed by clients",
	})

	m.sessionsExpired = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_expired_total",
		Help:      "Total number of adaptation sessions reaped after idling",
	})

	m.sessionsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_rejected_total",
		Help:      "Total number of session opens rejected at capacity",
	})

	// Interaction Metrics - Engagement signal classification
	m.signalsClassified = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "signals_classified_total",
			Help:      "Total number of interaction signals classified, by kind",
		},
		[]string{"kind"},
	)

	m.interactionsNeutral = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interactions_neutral_total",
		Help:      "Total number of view stops that produced no signal (neutral dwell or no matching start)",
	})

	m.trackerOpenViews = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracker_open_views",
		Help:      "Current number of open view observations across all sessions",
	})

	// Queue Metrics - Outbound feedback queue performance
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the outbound feedback queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum outbound feedback queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Outbound queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of outbound messages enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of outbound messages dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue errors",
	})

	m.outboundDropped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "outbound_dropped_total",
			Help:      "Total number of outbound messages dropped at a full queue, by kind",
		},
		[]string{"kind"},
	)

	// Emitter Metrics - Delivery performance
	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active emit workers",
	})

	m.emitLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "emit_latency_milliseconds",
			Help:      "Upstream emit latency in milliseconds, by message kind",
			Buckets:   m.histogramBuckets,
		},
		[]string{"kind"},
	)

	m.emitResults = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "emit_results_total",
			Help:      "Total number of upstream emits by message kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// Suggestion Metrics - Density filtering and feedback quality
	m.suggestionsKept = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "suggestions_kept_total",
			Help:      "Total number of suggestions kept by the density filter",
		},
		[]string{"density"},
	)

	m.suggestionsDropped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "suggestions_dropped_total",
			Help:      "Total number of suggestions removed by the density filter",
		},
		[]string{"density"},
	)

	m.feedbackDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feedback_duplicates_total",
		Help:      "Total number of duplicate suggestion feedback submissions detected",
	})

	// Patient Cache Metrics
	m.patientCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "patient_cache_hits_total",
		Help:      "Total number of patient plan cache hits",
	})

	m.patientCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "patient_cache_misses_total",
		Help:      "Total number of patient plan cache misses",
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Plan Metrics Functions.

// RecordPlanFetch increments the plan fetch counter for an outcome.
// Outcomes are applied, no_plan, error, and stale.
func RecordPlanFetch(outcome string) {
	globalManager.planFetches.WithLabelValues(outcome).Inc()
}

// RecordPlanFetchLatency records plan fetch latency in milliseconds.
func RecordPlanFetchLatency(latencyMs float64) {
	globalManager.planFetchLatency.Observe(latencyMs)
}

// RecordPlanStaleDiscard increments the stale plan discard counter.
func RecordPlanStaleDiscard() {
	globalManager.planStaleDiscards.Inc()
}

// RecordPlanFallback increments the last-good plan fallback counter.
func RecordPlanFallback() {
	globalManager.planFallbacks.Inc()
}

// UpdatePlanLastApplied sets the timestamp of the last applied plan.
func UpdatePlanLastApplied(unixSeconds int64) {
	globalManager.planLastApplied.Set(float64(unixSeconds))
}

// UpdateBreakerState sets the circuit breaker state for an upstream client.
func UpdateBreakerState(breaker string, state int) {
	globalManager.breakerState.WithLabelValues(breaker).Set(float64(state))
}

// Session Metrics Functions.

// UpdateSessionsActive sets the current active session count.
func UpdateSessionsActive(count int) {
	globalManager.sessionsActive.Set(float64(count))
}

// RecordSessionOpened increments the sessions opened counter.
func RecordSessionOpened() {
	globalManager.sessionsOpened.Inc()
}

// RecordSessionClosed increments the sessions closed counter.
func RecordSessionClosed() {
	globalManager.sessionsClosed.Inc()
}

// RecordSessionExpired increments the sessions expired counter.
func RecordSessionExpired() {
	globalManager.sessionsExpired.Inc()
}

// RecordSessionRejected increments the sessions rejected counter.
func RecordSessionRejected() {
	globalManager.sessionsRejected.Inc()
}

// Interaction Metrics Functions.

// RecordSignal increments the classified signal counter for a kind.
func RecordSignal(kind string) {
	globalManager.signalsClassified.WithLabelValues(kind).Inc()
}

// RecordNeutralInteraction increments the neutral interaction counter.
func RecordNeutralInteraction() {
	globalManager.interactionsNeutral.Inc()
}

// UpdateTrackerOpenViews sets the current open view observation count.
func UpdateTrackerOpenViews(count int) {
	globalManager.trackerOpenViews.Set(float64(count))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current outbound queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum outbound queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the outbound queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordOutboundDropped increments the dropped outbound message counter for a kind.
func RecordOutboundDropped(kind string) {
	globalManager.outboundDropped.WithLabelValues(kind).Inc()
}

// Emitter Metrics Functions.

// UpdateWorkerActiveCount sets the number of active emit workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordEmitLatency records upstream emit latency for a message kind.
func RecordEmitLatency(kind string, latencyMs float64) {
	globalManager.emitLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordEmitResult increments the emit result counter for a kind and outcome.
// Outcomes are ok and error.
func RecordEmitResult(kind, outcome string) {
	globalManager.emitResults.WithLabelValues(kind, outcome).Inc()
}

// Suggestion Metrics Functions.

// RecordSuggestionFilter records the kept and dropped counts of one filter pass.
func RecordSuggestionFilter(density string, kept, dropped int) {
	globalManager.suggestionsKept.WithLabelValues(density).Add(float64(kept))
	globalManager.suggestionsDropped.WithLabelValues(density).Add(float64(dropped))
}

// RecordFeedbackDuplicate increments the duplicate feedback counter.
func RecordFeedbackDuplicate() {
	globalManager.feedbackDuplicates.Inc()
}

// Patient Cache Metrics Functions.

// RecordPatientCacheHit increments the patient plan cache hit counter.
func RecordPatientCacheHit() {
	globalManager.patientCacheHits.Inc()
}

// RecordPatientCacheMiss increments the patient plan cache miss counter.
func RecordPatientCacheMiss() {
	globalManager.patientCacheMisses.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
