// Package plancache defines the plan cache interface and errors.
package plancache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/medvane/wardboard/internal/domain/model"
	"github.com/medvane/wardboard/pkg/metrics"
)

// In-memory Store implementation.
//
// Patient plans sit in a bounded LRU with a per-entry TTL; expired entries
// are dropped on read. The last-good dashboard plan is a single slot shared
// by all sessions.

const (
	defaultCapacity = 10_000
	defaultTTL      = 5 * time.Minute
)

// patientEntry pairs a cached plan with its expiry deadline.
type patientEntry struct {
	plan   *model.PatientPlan
	expiry time.Time
}

func (e patientEntry) expired(now time.Time) bool {
	return now.After(e.expiry)
}

// MemoryStore is the in-memory Store implementation.
type MemoryStore struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	patients *lru.Cache[string, patientEntry]

	mu       sync.RWMutex
	lastGood *model.Plan
}

// NewMemoryStore creates an in-memory plan cache.
func NewMemoryStore(opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		capacity: defaultCapacity,
		ttl:      defaultTTL,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	patients, err := lru.New[string, patientEntry](s.capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateCache, err)
	}
	s.patients = patients

	return s, nil
}

// PatientPlan returns the cached plan for a patient, if present and fresh.
func (s *MemoryStore) PatientPlan(_ context.Context, patientID string) (*model.PatientPlan, bool) {
	if entry, ok := s.patients.Get(patientID); ok {
		if !entry.expired(s.now()) {
			metrics.RecordPatientCacheHit()
			return entry.plan, true
		}
		// Drop expired entry
		s.patients.Remove(patientID)
	}
	metrics.RecordPatientCacheMiss()
	return nil, false
}

// SetPatientPlan caches a patient plan. A nil plan removes the entry.
func (s *MemoryStore) SetPatientPlan(_ context.Context, patientID string, plan *model.PatientPlan) {
	if plan == nil {
		s.patients.Remove(patientID)
		return
	}
	s.patients.Add(patientID, patientEntry{
		plan:   plan,
		expiry: s.now().Add(s.ttl),
	})
}

// LastGood returns the most recent dashboard plan any session applied.
func (s *MemoryStore) LastGood(_ context.Context) *model.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastGood
}

// SetLastGood replaces the shared last-good plan.
func (s *MemoryStore) SetLastGood(_ context.Context, plan *model.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGood = plan
}

// Count returns the number of patient plans currently cached.
func (s *MemoryStore) Count(_ context.Context) int {
	return s.patients.Len()
}
