package cob

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/salus-health/benefits-cli/internal/model"
)

// --- Lookup Mock ---

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) FindPlan(ctx context.Context, provider string) (*model.PlanRecord, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlanRecord), args.Error(1)
}

func (m *mockLookup) FindProgram(ctx context.Context, region string) (*model.ProgramRecord, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgramRecord), args.Error(1)
}

// emptyLookup returns "not found" for everything.
func emptyLookup() *mockLookup {
	l := &mockLookup{}
	l.On("FindPlan", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	l.On("FindProgram", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	return l
}

// --- Reasoning Mock ---

type mockReasoning struct {
	mock.Mock
}

func (m *mockReasoning) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
