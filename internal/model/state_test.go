package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageUpdate_ApplyScalars(t *testing.T) {
	state := PipelineState{PrivateCoverage: 100}

	private := 700.0
	public := 150.0
	merged := StageUpdate{PrivateCoverage: &private, PublicCoverage: &public}.Apply(state)

	assert.Equal(t, 700.0, merged.PrivateCoverage)
	assert.Equal(t, 150.0, merged.PublicCoverage)
	// Original is untouched.
	assert.Equal(t, 100.0, state.PrivateCoverage)
}

func TestStageUpdate_NilPointersLeaveStateAlone(t *testing.T) {
	state := PipelineState{PrivateCoverage: 700, FinalCost: 50, Summary: "done"}

	merged := StageUpdate{}.Apply(state)

	assert.Equal(t, 700.0, merged.PrivateCoverage)
	assert.Equal(t, 50.0, merged.FinalCost)
	assert.Equal(t, "done", merged.Summary)
}

func TestStageUpdate_LogConcatenates(t *testing.T) {
	state := PipelineState{Log: []string{"first", "second"}}

	merged := StageUpdate{Log: []string{"third"}}.Apply(state)

	assert.Equal(t, []string{"first", "second", "third"}, merged.Log)
	assert.Equal(t, []string{"first", "second"}, state.Log)
}

func TestStageUpdate_LogCopyDoesNotAlias(t *testing.T) {
	state := PipelineState{Log: make([]string, 2, 8)}
	state.Log[0], state.Log[1] = "a", "b"

	first := StageUpdate{Log: []string{"c"}}.Apply(state)
	second := StageUpdate{Log: []string{"d"}}.Apply(state)

	assert.Equal(t, []string{"a", "b", "c"}, first.Log)
	assert.Equal(t, []string{"a", "b", "d"}, second.Log)
}

func TestStageUpdate_BillReplaced(t *testing.T) {
	state := PipelineState{Bill: BillRecord{Total: -10}}

	bill := BillRecord{Total: 0, Provider: "Unknown"}
	merged := StageUpdate{Bill: &bill}.Apply(state)

	assert.Equal(t, 0.0, merged.Bill.Total)
	assert.Equal(t, "Unknown", merged.Bill.Provider)
}
