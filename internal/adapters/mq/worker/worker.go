// Package worker defines worker contracts for asynchronous feedback delivery.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/medvane/wardboard/internal/domain/model"
	"github.com/medvane/wardboard/pkg/logger"
	"github.com/medvane/wardboard/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Item abstracts what workers read off the queue.
// Using the model.Outbound type for consistency.
type Item = model.Outbound

// Emitter delivers outbound items to the upstream backend.
type Emitter interface {
	EmitSignal(ctx context.Context, sig model.FeedbackSignal) error
	EmitNavigation(ctx context.Context, nav model.NavigationEvent) error
	EmitSuggestionFeedback(ctx context.Context, fb model.SuggestionFeedback) error
}

// Queue defines how workers receive items.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Item
}

// Worker drains outbound items and delivers them using the provided emitter.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining items before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for delivering outbound items.
type InMemoryWorker struct {
	queue   Queue
	emitter Emitter
	name    string

	// Shutdown control
	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, emitter Emitter, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		emitter:  emitter,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	itemChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case it, ok := <-itemChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			// Deliver the item. Failures are logged and the item is dropped;
			// feedback is advisory and never retried.
			if err := w.processItem(ctx, it); err != nil {
				w.logger.Error(ctx, "error delivering outbound item", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker. Safe to call more than once.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	w.stopOnce.Do(func() { close(w.shutdown) })

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processItem delivers a single outbound item to the upstream.
func (w *InMemoryWorker) processItem(ctx context.Context, it Item) error { //nolint:gocritic // hugeParam: Item must be passed by value for channel semantics
	kind := string(it.Kind)

	// Track delivery latency per item kind
	start := time.Now()
	var err error
	switch it.Kind {
	case model.OutboundSignal:
		err = w.emitter.EmitSignal(ctx, it.Signal)
	case model.OutboundNavigation:
		err = w.emitter.EmitNavigation(ctx, it.Navigation)
	case model.OutboundSuggestion:
		err = w.emitter.EmitSuggestionFeedback(ctx, it.Suggestion)
	default:
		metrics.RecordErrorByComponent("worker", "unknown_kind")
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	latency := time.Since(start).Milliseconds()
	metrics.RecordEmitLatency(kind, float64(latency))

	if err != nil {
		metrics.RecordEmitResult(kind, "error")
		metrics.RecordErrorByComponent("worker", "emit_error")
		w.logger.Error(ctx, "emit failed, dropping item",
			logger.String("kind", kind),
			logger.Error(err),
		)
		return fmt.Errorf("emit %s: %w", kind, err)
	}

	metrics.RecordEmitResult(kind, "ok")
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	emitter Emitter

	// Shutdown control
	stopOnce sync.Once
	shutdown chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, emitter Emitter) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		emitter:  emitter,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			emitter,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	// Initialize worker metrics
	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	// Start metrics updater
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that refreshes queue
// gauges. Size and utilization are otherwise only updated on enqueue and
// dequeue, so they would go stale while traffic is idle.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			if lener, ok := p.queue.(interface{ Len(ctx context.Context) int }); ok {
				lener.Len(ctx)
			}
		}
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	// Signal shutdown to all workers
	p.stopOnce.Do(func() { close(p.shutdown) })

	for _, worker := range p.workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		_ = worker.Shutdown(ctx)
		cancel()
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new items
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Signal shutdown to all workers
	p.stopOnce.Do(func() { close(p.shutdown) })

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		if err := worker.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
