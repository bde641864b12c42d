package plancache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/medvane/wardboard/internal/domain/model"
)

func newTestPlan(order ...string) *model.PatientPlan {
	return &model.PatientPlan{
		Order:             order,
		SuggestionDensity: model.DensityMedium,
		FetchedAt:         time.Now(),
	}
}

func TestMemoryStore_PatientPlanRoundTrip(t *testing.T) {
	s, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("expected store creation to succeed, got error: %v", err)
	}
	ctx := context.Background()

	// Unknown patient
	if plan, ok := s.PatientPlan(ctx, "pat-1"); ok || plan != nil {
		t.Errorf("expected miss for unknown patient, got %v", plan)
	}

	// Cache and read back
	s.SetPatientPlan(ctx, "pat-1", newTestPlan("vitals", "ecg"))
	plan, ok := s.PatientPlan(ctx, "pat-1")
	if !ok || plan == nil {
		t.Fatal("expected hit after set")
	}
	if len(plan.Order) != 2 || plan.Order[0] != "vitals" {
		t.Errorf("expected cached order [vitals ecg], got %v", plan.Order)
	}

	if c := s.Count(ctx); c != 1 {
		t.Errorf("expected count 1, got %d", c)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	now := time.Now()
	s, err := NewMemoryStore(
		WithTTL(time.Minute),
		WithClock(func() time.Time { return now }),
	)
	if err != nil {
		t.Fatalf("expected store creation to succeed, got error: %v", err)
	}
	ctx := context.Background()

	s.SetPatientPlan(ctx, "pat-1", newTestPlan("vitals"))

	// Still fresh just before the deadline
	now = now.Add(59 * time.Second)
	if _, ok := s.PatientPlan(ctx, "pat-1"); !ok {
		t.Error("expected hit before TTL expires")
	}

	// Expired entries miss and are dropped
	now = now.Add(2 * time.Second)
	if _, ok := s.PatientPlan(ctx, "pat-1"); ok {
		t.Error("expected miss after TTL expires")
	}
	if c := s.Count(ctx); c != 0 {
		t.Errorf("expected expired entry to be dropped, count %d", c)
	}
}

func TestMemoryStore_Eviction(t *testing.T) {
	s, err := NewMemoryStore(WithCapacity(2))
	if err != nil {
		t.Fatalf("expected store creation to succeed, got error: %v", err)
	}
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		s.SetPatientPlan(ctx, fmt.Sprintf("pat-%d", i), newTestPlan("vitals"))
	}

	if c := s.Count(ctx); c != 2 {
		t.Errorf("expected count 2 after eviction, got %d", c)
	}
	if _, ok := s.PatientPlan(ctx, "pat-1"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok := s.PatientPlan(ctx, "pat-3"); !ok {
		t.Error("expected newest entry to survive eviction")
	}
}

func TestMemoryStore_NilPlanRemoves(t *testing.T) {
	s, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("expected store creation to succeed, got error: %v", err)
	}
	ctx := context.Background()

	s.SetPatientPlan(ctx, "pat-1", newTestPlan("vitals"))
	s.SetPatientPlan(ctx, "pat-1", nil)

	if _, ok := s.PatientPlan(ctx, "pat-1"); ok {
		t.Error("expected nil plan to remove the entry")
	}
	if c := s.Count(ctx); c != 0 {
		t.Errorf("expected count 0, got %d", c)
	}
}

func TestMemoryStore_LastGood(t *testing.T) {
	s, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("expected store creation to succeed, got error: %v", err)
	}
	ctx := context.Background()

	// Empty until the first session applies a plan
	if plan := s.LastGood(ctx); plan != nil {
		t.Errorf("expected no last-good plan initially, got %v", plan)
	}

	applied := &model.Plan{
		FeaturePriority:   []model.FeatureEntry{{ID: "ecg", Position: 0, Size: model.SizeLarge}},
		SuggestionDensity: model.DensityLow,
		FetchedAt:         time.Now(),
	}
	s.SetLastGood(ctx, applied)
	if plan := s.LastGood(ctx); plan != applied {
		t.Errorf("expected last-good plan to round-trip, got %v", plan)
	}

	// Upstream reporting "no plan" clears the slot
	s.SetLastGood(ctx, nil)
	if plan := s.LastGood(ctx); plan != nil {
		t.Errorf("expected cleared last-good plan, got %v", plan)
	}
}
