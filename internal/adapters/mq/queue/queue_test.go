package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/medvane/wardboard/internal/domain/model"
)

func signalItem(id, featureID string) Item {
	return model.NewOutboundSignal(model.FeedbackSignal{
		ID:        id,
		FeatureID: featureID,
		Kind:      model.SignalQuickGlance,
		Success:   true,
		Weight:    1.0,
	})
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Test empty queue
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	// Test enqueue
	if !q.Enqueue(ctx, signalItem("sig1", "vitals")) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	// Test dequeue
	itemChan := q.Dequeue(ctx)
	it := <-itemChan
	if it.Kind != model.OutboundSignal {
		t.Errorf("expected signal kind, got %v", it.Kind)
	}
	if it.Signal.ID != "sig1" {
		t.Errorf("expected sig1, got %v", it.Signal.ID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Fill the queue with mixed item kinds
	if !q.Enqueue(ctx, signalItem("sig1", "vitals")) {
		t.Error("expected enqueue to succeed")
	}
	nav := model.NewOutboundNavigation(model.NavigationEvent{
		FromSection: "vitals",
		ToSection:   "ecg",
		At:          time.Now(),
	})
	if !q.Enqueue(ctx, nav) {
		t.Error("expected enqueue to succeed")
	}

	// Try to enqueue when full
	if q.Enqueue(ctx, signalItem("sig3", "ecg")) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	numGoroutines := 10
	numItems := 100

	// Start producer goroutines
	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			for j := 0; j < numItems; j++ {
				it := signalItem(fmt.Sprintf("sig%d_%d", id, j), fmt.Sprintf("section%d", id))
				for !q.Enqueue(ctx, it) {
					time.Sleep(time.Millisecond)
				}
			}
			done <- true
		}(i)
	}

	// Start consumer goroutines
	consumed := make(chan string, numGoroutines*numItems)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			itemChan := q.Dequeue(ctx)
			for it := range itemChan {
				consumed <- it.Signal.ID
			}
		}()
	}

	// Wait for producers to finish
	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	// Wait a bit for consumers to process
	time.Sleep(100 * time.Millisecond)

	// Check final queue length
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	// Enqueue some items
	if !q.Enqueue(ctx, signalItem("sig1", "vitals")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, signalItem("sig2", "ecg")) {
		t.Error("expected enqueue to succeed")
	}

	// Check initial state
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	// Close the queue
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}

	// Check closed state
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}

	// Try to enqueue after closing (should fail)
	if q.Enqueue(ctx, signalItem("sig3", "labs")) {
		t.Error("expected enqueue to fail after closing")
	}

	// Dequeue channel should be closed
	itemChan := q.Dequeue(ctx)

	// Wait for channel to be closed
	timeout := time.After(100 * time.Millisecond)
	for {
		select {
		case _, ok := <-itemChan:
			if !ok {
				// Channel is closed, which is expected
				goto channelClosed
			}
		case <-timeout:
			t.Error("expected dequeue channel to be closed within timeout")
			return
		}
	}
channelClosed:

	// Close again should not error
	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
