// Package queue defines the contract for enqueuing and consuming outbound
// feedback items.
//
// Enqueue never blocks the caller: interaction handling is fire-and-forget,
// so a full queue drops the item rather than stalling the dashboard.
package queue

import (
	"context"
	"sync"

	"github.com/medvane/wardboard/internal/domain/model"
	"github.com/medvane/wardboard/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 100000
	defaultBufferSize    = 100000
)

// Item represents the payload type flowing through the queue.
// Using the model.Outbound type for type safety.
type Item = model.Outbound

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an item to the queue.
	// Returns false if the queue is full and the item was dropped.
	Enqueue(ctx context.Context, it Item) bool

	// Dequeue returns a channel that will receive items as they become available.
	// The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Item

	// Len returns the current number of queued items.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new items can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items      chan Item
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	// Initialize the items channel with the configured buffer size
	q.items = make(chan Item, q.bufferSize)

	// Initialize metrics
	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds an item to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, it Item) bool { //nolint:gocritic // hugeParam: Item must be passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.recordDrop(it, "closed")
		return false
	}

	// Check if we're at capacity
	if len(q.items) >= q.capacity {
		q.recordDrop(it, "capacity_exceeded")
		return false
	}

	select {
	case q.items <- it:
		metrics.RecordQueueEnqueue()
		// Update queue size and utilization
		currentSize := len(q.items)
		metrics.UpdateQueueSize(currentSize)
		utilization := float64(currentSize) / float64(q.capacity)
		metrics.UpdateQueueUtilization(utilization)
		return true
	case <-ctx.Done():
		q.recordDrop(it, "context_cancelled")
		return false
	default:
		q.recordDrop(it, "queue_full")
		return false
	}
}

// recordDrop counts a failed enqueue both as a queue error and as a dropped
// outbound item of the given kind.
func (q *InMemoryQueue) recordDrop(it Item, reason string) { //nolint:gocritic // hugeParam: Item kept by value to match Enqueue
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
	metrics.RecordOutboundDropped(string(it.Kind))
}

// Dequeue returns a channel that will receive items as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Item {
	// Wrap the channel to track dequeue metrics
	dequeueChan := make(chan Item)
	go func() {
		defer close(dequeueChan)
		for it := range q.items {
			select {
			case dequeueChan <- it:
				metrics.RecordQueueDequeue()
				// Update queue size and utilization after dequeue
				currentSize := len(q.items)
				metrics.UpdateQueueSize(currentSize)
				utilization := float64(currentSize) / float64(q.capacity)
				metrics.UpdateQueueUtilization(utilization)
			case <-ctx.Done():
				return
			}
		}
	}()
	return dequeueChan
}

// Len returns the current number of queued items.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	utilization := float64(size) / float64(q.capacity)
	metrics.UpdateQueueUtilization(utilization)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}

	// Close the items channel to signal consumers to stop
	close(q.items)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
