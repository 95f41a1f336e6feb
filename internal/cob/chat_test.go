package cob

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/salus-health/benefits-cli/internal/model"
	"github.com/salus-health/benefits-cli/pkg/reasoning"
)

func TestRunChat_NoClient(t *testing.T) {
	p := New(testCoverageConfig(), emptyLookup(), nil)

	result := p.RunChat(context.Background(), ChatRequest{UserMessage: "Hello"})

	assert.Equal(t, chatNoClientReply, result.Response)
	assert.False(t, result.AnalysisComplete)
}

func TestRunChat_ReasoningReplyPassedThrough(t *testing.T) {
	reason := &mockReasoning{}
	reason.On("Generate", mock.Anything, mock.Anything).
		Return("You may qualify for the Ontario Drug Benefit.", nil)

	p := New(testCoverageConfig(), emptyLookup(), reason)

	result := p.RunChat(context.Background(), ChatRequest{
		Region:      "Ontario",
		UserMessage: "What programs exist?",
	})

	assert.Equal(t, "You may qualify for the Ontario Drug Benefit.", result.Response)
}

func TestRunChat_RateLimitedCopy(t *testing.T) {
	reason := &mockReasoning{}
	reason.On("Generate", mock.Anything, mock.Anything).
		Return("", &reasoning.RateLimitedError{Err: errors.New("429")})

	p := New(testCoverageConfig(), emptyLookup(), reason)

	result := p.RunChat(context.Background(), ChatRequest{UserMessage: "Hello"})

	assert.Equal(t, chatRateLimitedReply, result.Response)
}

func TestRunChat_GenericErrorCopy(t *testing.T) {
	reason := &mockReasoning{}
	reason.On("Generate", mock.Anything, mock.Anything).
		Return("", errors.New("boom"))

	p := New(testCoverageConfig(), emptyLookup(), reason)

	result := p.RunChat(context.Background(), ChatRequest{UserMessage: "Hello"})

	assert.Equal(t, chatErrorReply, result.Response)
}

func TestRunChat_PromptCarriesContext(t *testing.T) {
	var captured string
	reason := &mockReasoning{}
	reason.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		captured = prompt
		return true
	})).Return("ok", nil)

	bill := &model.BillRecord{Total: 500, Provider: "Clinic", Services: []string{"X-Ray"}}
	p := New(testCoverageConfig(), emptyLookup(), reason)

	p.RunChat(context.Background(), ChatRequest{
		PolicyID: "POL-9",
		Region:   "Ontario",
		Bill:     bill,
		History: []model.ChatTurn{
			{Role: "user", Content: "I got a bill."},
			{Role: "assistant", Content: "Tell me more."},
		},
		UserMessage: "It was for an X-Ray.",
	})

	assert.Contains(t, captured, "POL-9")
	assert.Contains(t, captured, "Ontario")
	assert.Contains(t, captured, "X-Ray")
	assert.Contains(t, captured, "User: I got a bill.")
	assert.Contains(t, captured, "Salus: Tell me more.")
	assert.True(t, strings.HasSuffix(captured, "Salus:"))
}

func TestRunChat_DefaultsRegionAndPolicy(t *testing.T) {
	var captured string
	reason := &mockReasoning{}
	reason.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		captured = prompt
		return true
	})).Return("ok", nil)

	p := New(testCoverageConfig(), emptyLookup(), reason)
	p.RunChat(context.Background(), ChatRequest{UserMessage: "Hi"})

	assert.Contains(t, captured, "Ontario")
	assert.Contains(t, captured, "Unknown")
}

func TestWantsAnalysis(t *testing.T) {
	assert.True(t, wantsAnalysis("Yes, please check my coverage"))
	assert.True(t, wantsAnalysis("what will I PAY?"))
	assert.True(t, wantsAnalysis("run the analysis"))
	assert.False(t, wantsAnalysis("hello there"))
	assert.False(t, wantsAnalysis(""))
}
