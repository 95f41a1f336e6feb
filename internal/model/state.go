package model

// PipelineState is the single record threaded through the coordination
// pipeline. Stages never mutate it directly; each stage returns a StageUpdate
// and the orchestrator merges updates into a fresh copy.
type PipelineState struct {
	Bill     BillRecord `json:"bill"`
	PolicyID string     `json:"policy_id"`
	Region   string     `json:"region"`

	PrivateCoverage float64 `json:"private_coverage"`
	PublicCoverage  float64 `json:"public_coverage"`
	FinalCost       float64 `json:"final_cost"`

	Summary string `json:"summary,omitempty"`

	// Log accumulates narrative lines across stages, append-only.
	Log []string `json:"log"`
}

// StageUpdate is the partial result a stage hands back to the orchestrator.
// Scalar fields are applied only when the corresponding pointer is non-nil;
// Log lines are always appended, never replacing earlier entries.
type StageUpdate struct {
	Bill            *BillRecord
	PrivateCoverage *float64
	PublicCoverage  *float64
	FinalCost       *float64
	Summary         *string
	Log             []string
}

// Apply merges the update into the state and returns the merged copy.
func (u StageUpdate) Apply(s PipelineState) PipelineState {
	if u.Bill != nil {
		s.Bill = *u.Bill
	}
	if u.PrivateCoverage != nil {
		s.PrivateCoverage = *u.PrivateCoverage
	}
	if u.PublicCoverage != nil {
		s.PublicCoverage = *u.PublicCoverage
	}
	if u.FinalCost != nil {
		s.FinalCost = *u.FinalCost
	}
	if u.Summary != nil {
		s.Summary = *u.Summary
	}
	s.Log = append(append([]string{}, s.Log...), u.Log...)
	return s
}

// AnalysisResult is the caller-facing outcome of a full pipeline run.
type AnalysisResult struct {
	BillTotal       float64  `json:"bill_total"`
	PrivateCoverage float64  `json:"private_coverage"`
	PublicCoverage  float64  `json:"public_coverage"`
	FinalCost       float64  `json:"final_cost"`
	Summary         string   `json:"summary"`
	Log             []string `json:"log"`
}

// ChatResult is the outcome of the single-stage chat pipeline.
type ChatResult struct {
	Response         string   `json:"response"`
	Log              []string `json:"log"`
	AnalysisComplete bool     `json:"analysis_complete"`
}

// ChatTurn is one prior message in a chat conversation.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}
