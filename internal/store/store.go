// Package store persists coverage reference data (plans, aid programs, drug
// formulary) and analysis history behind a driver-agnostic interface.
package store

import (
	"context"

	"github.com/salus-health/benefits-cli/internal/model"
)

// defaultHistoryLimit caps ListAnalyses when the caller passes no limit.
const defaultHistoryLimit = 20

// Store defines the persistence interface for the coordination pipeline and
// its surrounding commands. Lookup methods return (nil, nil) for "not
// found"; implementations must be safe for concurrent use by independent
// requests.
type Store interface {
	// Reference data
	FindPlan(ctx context.Context, provider string) (*model.PlanRecord, error)
	FindProgram(ctx context.Context, region string) (*model.ProgramRecord, error)
	FindDrug(ctx context.Context, name string) (*model.DrugRecord, error)

	// Analysis history
	SaveAnalysis(ctx context.Context, a *model.Analysis) error
	ListAnalyses(ctx context.Context, policyID string, limit int) ([]model.Analysis, error)

	// Seeding
	SeedReference(ctx context.Context, data *SeedData) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
