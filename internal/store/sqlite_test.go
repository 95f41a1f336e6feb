package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salus-health/benefits-cli/internal/model"
)

// newTestSQLite creates a migrated, seeded in-memory store.
func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))

	data, err := DefaultSeedData()
	require.NoError(t, err)
	require.NoError(t, s.SeedReference(ctx, data))

	return s
}

func TestSQLiteStore_FindPlan_CaseInsensitiveMatch(t *testing.T) {
	s := newTestSQLite(t)

	plan, err := s.FindPlan(context.Background(), "sun life")
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "SLG80", plan.PlanID)
	assert.Equal(t, "Sun Life", plan.Provider)
}

func TestSQLiteStore_FindPlan_UnknownProviderUsesDefault(t *testing.T) {
	s := newTestSQLite(t)

	plan, err := s.FindPlan(context.Background(), "Obscure Mutual")
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, defaultPlanID, plan.PlanID)
}

func TestSQLiteStore_FindPlan_EmptyDatabase(t *testing.T) {
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))

	plan, err := s.FindPlan(context.Background(), "Sun Life")
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestSQLiteStore_FindProgram_PrefersODB(t *testing.T) {
	s := newTestSQLite(t)

	program, err := s.FindProgram(context.Background(), "Ontario")
	require.NoError(t, err)
	require.NotNil(t, program)
	assert.Equal(t, "ODB", program.ProgramID)
	assert.NotEmpty(t, program.Eligibility)
}

func TestSQLiteStore_FindProgram_UnknownRegion(t *testing.T) {
	s := newTestSQLite(t)

	program, err := s.FindProgram(context.Background(), "Mars")
	require.NoError(t, err)
	assert.Nil(t, program)
}

func TestSQLiteStore_FindDrug_ByNameOrBrand(t *testing.T) {
	s := newTestSQLite(t)

	drug, err := s.FindDrug(context.Background(), "atorvastatin")
	require.NoError(t, err)
	require.NotNil(t, drug)
	assert.Equal(t, "ATORVASTATIN", drug.DrugName)

	byBrand, err := s.FindDrug(context.Background(), "lipitor")
	require.NoError(t, err)
	require.NotNil(t, byBrand)
	assert.Equal(t, drug.DIN, byBrand.DIN)
}

func TestSQLiteStore_FindDrug_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	drug, err := s.FindDrug(context.Background(), "unobtainium")
	require.NoError(t, err)
	assert.Nil(t, drug)
}

func TestSQLiteStore_SaveAndListAnalyses(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first := &model.Analysis{
		PolicyID:  "POL-1",
		Region:    "Ontario",
		Bill:      model.BillRecord{Total: 1000, Provider: "Clinic", Services: []string{"MRI"}},
		Result:    model.AnalysisResult{BillTotal: 1000, FinalCost: 150},
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	second := &model.Analysis{
		PolicyID: "POL-2",
		Region:   "Ontario",
		Bill:     model.BillRecord{Total: 200},
		Result:   model.AnalysisResult{BillTotal: 200, FinalCost: 30},
	}
	require.NoError(t, s.SaveAnalysis(ctx, first))
	require.NoError(t, s.SaveAnalysis(ctx, second))
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	all, err := s.ListAnalyses(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest first.
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, "Clinic", all[1].Bill.Provider)
	assert.Equal(t, 150.0, all[1].Result.FinalCost)

	filtered, err := s.ListAnalyses(ctx, "POL-1", 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.ID, filtered[0].ID)
}

func TestSQLiteStore_ListAnalyses_Limit(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveAnalysis(ctx, &model.Analysis{
			PolicyID: "POL-1",
			Region:   "Ontario",
			Bill:     model.BillRecord{Total: float64(100 * (i + 1))},
			Result:   model.AnalysisResult{},
		}))
	}

	limited, err := s.ListAnalyses(ctx, "POL-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLiteStore_SeedIsIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	data, err := DefaultSeedData()
	require.NoError(t, err)
	require.NoError(t, s.SeedReference(ctx, data))

	plan, err := s.FindPlan(ctx, "Sun Life")
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "SLG80", plan.PlanID)
}
