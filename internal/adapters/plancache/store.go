// Package plancache defines the plan cache interface and errors.
package plancache

import (
	"context"

	"github.com/medvane/wardboard/internal/domain/model"
)

// Store provides read/write access to cached upstream plans.
type Store interface {
	// PatientPlan returns the cached plan for a patient, if present and fresh.
	PatientPlan(ctx context.Context, patientID string) (*model.PatientPlan, bool)
	// SetPatientPlan caches a patient plan. A nil plan removes the entry.
	SetPatientPlan(ctx context.Context, patientID string, plan *model.PatientPlan)

	// LastGood returns the most recent dashboard plan any session applied.
	// New sessions render from it until their own first fetch completes.
	LastGood(ctx context.Context) *model.Plan
	// SetLastGood replaces the shared last-good plan. A nil plan clears it,
	// which happens when the upstream reports no active plan.
	SetLastGood(ctx context.Context, plan *model.Plan)

	// Count returns the number of patient plans currently cached.
	Count(ctx context.Context) int
}
