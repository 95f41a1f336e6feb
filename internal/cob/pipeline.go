// Package cob implements the coordination-of-benefits pipeline: a fixed
// four-stage state machine (extract, adjudicate private, adjudicate public,
// coordinate) that determines what insurance pays, what public aid pays, and
// what the patient owes, narrating every step.
package cob

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/salus-health/benefits-cli/internal/config"
	"github.com/salus-health/benefits-cli/internal/model"
	"github.com/salus-health/benefits-cli/pkg/reasoning"
)

// Lookup fetches read-only coverage reference data. A nil record with a nil
// error means "not found"; stages treat lookup errors the same way and fall
// back to rule-based decisions.
type Lookup interface {
	FindPlan(ctx context.Context, provider string) (*model.PlanRecord, error)
	FindProgram(ctx context.Context, region string) (*model.ProgramRecord, error)
}

// StageFailure wraps an error from inside a stage. It is the only error class
// that escapes a pipeline run; external-service and parse failures are
// absorbed by the stage fallbacks and never surface here.
type StageFailure struct {
	Stage string
	Cause error
}

func (e *StageFailure) Error() string {
	return fmt.Sprintf("cob: stage %s failed: %v", e.Stage, e.Cause)
}

func (e *StageFailure) Unwrap() error {
	return e.Cause
}

// stageFunc derives a partial update from the accumulated state. Stages must
// not mutate the state they receive.
type stageFunc func(ctx context.Context, state model.PipelineState) (model.StageUpdate, error)

type stage struct {
	name string
	fn   stageFunc
}

// Pipeline threads PipelineState through the four coordination stages in
// fixed order. It is safe for concurrent use; all per-request state lives in
// the PipelineState value.
type Pipeline struct {
	cfg       config.CoverageConfig
	lookup    Lookup
	reasoning reasoning.Client // nil when no reasoning service is configured
	policy    Policy
}

// New creates a Pipeline. client may be nil, in which case every stage runs
// on its rule-based fallback tier.
func New(cfg config.CoverageConfig, lookup Lookup, client reasoning.Client) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		lookup:    lookup,
		reasoning: client,
		policy:    NewPolicy(cfg),
	}
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{"extract", p.extract},
		{"adjudicate_private", p.adjudicatePrivate},
		{"adjudicate_public", p.adjudicatePublic},
		{"coordinate", p.coordinate},
	}
}

// Run executes the four stages strictly in order, merging each stage's
// partial update into the running state: scalar fields overwrite, the log
// concatenates. A failing stage commits nothing, not even its log lines,
// and the failure propagates as a *StageFailure.
func (p *Pipeline) Run(ctx context.Context, initial model.PipelineState) (model.PipelineState, error) {
	state := initial
	for _, st := range p.stages() {
		update, err := st.fn(ctx, state)
		if err != nil {
			zap.L().Error("cob: stage failed",
				zap.String("stage", st.name),
				zap.Error(err),
			)
			return state, &StageFailure{Stage: st.name, Cause: err}
		}
		state = update.Apply(state)
	}
	return state, nil
}

// RunAnalysis is the analysis entrypoint: it seeds a request-scoped state
// from the caller's bill and returns the final numbers, narrative log, and
// summary.
func (p *Pipeline) RunAnalysis(ctx context.Context, policyID, region string, bill model.BillRecord) (*model.AnalysisResult, error) {
	state, err := p.Run(ctx, model.PipelineState{
		Bill:     bill,
		PolicyID: policyID,
		Region:   region,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("cob: analysis complete",
		zap.String("region", region),
		zap.Float64("bill_total", state.Bill.Total),
		zap.Float64("private_coverage", state.PrivateCoverage),
		zap.Float64("public_coverage", state.PublicCoverage),
		zap.Float64("final_cost", state.FinalCost),
	)

	return &model.AnalysisResult{
		BillTotal:       state.Bill.Total,
		PrivateCoverage: state.PrivateCoverage,
		PublicCoverage:  state.PublicCoverage,
		FinalCost:       state.FinalCost,
		Summary:         state.Summary,
		Log:             state.Log,
	}, nil
}
