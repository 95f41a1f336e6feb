package cob

import (
	"context"
	"fmt"
	"strings"

	"github.com/salus-health/benefits-cli/internal/model"
	"github.com/salus-health/benefits-cli/pkg/reasoning"
)

// Canned chat copy for the degraded paths. Rate limiting gets its own
// apology; other failures share the generic reassurance.
const (
	chatNoClientReply = "I'm here to help you understand your medical bills and find coverage. Please tell me about your situation."

	chatRateLimitedReply = "I'm currently experiencing high demand. Please wait a moment and try again. In the meantime, know that I'm here to help you find coverage for your medical bills."

	chatErrorReply = "I understand you're concerned about your medical bills. I'm here to help you find coverage from both your insurance and government programs. Could you tell me more about the bill you received?"
)

// coverageKeywords flag a user message as intending to run the full
// coordination analysis.
var coverageKeywords = []string{
	"yes", "confirm", "correct", "check", "coverage", "pay", "cost", "analyze", "run",
}

// ChatRequest carries one turn of the benefits-assistant conversation. Bill
// is optional; callers pass it explicitly per request rather than relying on
// any shared upload state.
type ChatRequest struct {
	PolicyID    string
	Region      string
	Bill        *model.BillRecord
	History     []model.ChatTurn
	UserMessage string
}

// RunChat is the degenerate one-stage pipeline behind the conversational
// front-end. It shares the reasoning-service contract with the coordination
// stages: every failure is absorbed into canned copy, never an error.
func (p *Pipeline) RunChat(ctx context.Context, req ChatRequest) *model.ChatResult {
	logs := []string{"Chat: Processing user message..."}

	region := req.Region
	if region == "" {
		region = p.cfg.FallbackRegion
	}
	policyID := req.PolicyID
	if policyID == "" {
		policyID = "Unknown"
	}

	systemPrompt := fmt.Sprintf(chatSystemPromptTmpl, region, policyID, formatBillContext(req.Bill))

	var conversation strings.Builder
	for _, turn := range req.History {
		role := "Salus"
		if turn.Role == "user" {
			role = "User"
		}
		fmt.Fprintf(&conversation, "%s: %s\n", role, turn.Content)
	}

	response := chatNoClientReply
	if p.reasoning != nil {
		prompt := fmt.Sprintf("%s\n\nConversation so far:\n%s\nUser: %s\n\nSalus:",
			systemPrompt, conversation.String(), req.UserMessage)

		text, err := p.reasoning.Generate(ctx, prompt)
		switch {
		case err == nil:
			response = text
			logs = append(logs, "Chat: Responded to user")
		case reasoning.IsRateLimited(err):
			response = chatRateLimitedReply
			logs = append(logs, "Chat: Reasoning service rate limited, using canned reply")
		default:
			response = chatErrorReply
			logs = append(logs, "Chat: Reasoning service failed, using canned reply")
		}
	} else {
		logs = append(logs, "Chat: No reasoning service configured, using canned reply")
	}

	return &model.ChatResult{
		Response:         response,
		Log:              logs,
		AnalysisComplete: wantsAnalysis(req.UserMessage),
	}
}

// wantsAnalysis reports whether the message looks like a request to run the
// coverage analysis.
func wantsAnalysis(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range coverageKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
