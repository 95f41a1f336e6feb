package cob

import (
	"context"
	"fmt"

	"github.com/salus-health/benefits-cli/internal/model"
	"github.com/salus-health/benefits-cli/pkg/reasoning"
)

// adjusterFields are the reply fields requested from the reasoning service
// during private adjudication. COVERAGE_PERCENT is an accepted alias of
// COVERAGE_RATE; both are display-only.
var adjusterFields = []string{
	fieldReasoning,
	fieldCoverageRate,
	fieldCoveragePct,
	fieldCoverageAmount,
	fieldAssessment,
}

// adjudicatePrivate determines what the private insurance plan covers. The
// decision cascades through three tiers: a parsed reasoning-service amount,
// the rule-based default rate, and (implicitly, for a zero bill) zero. The
// amount is deliberately not clamped against the bill total here; the
// terminal stage owns the clamp.
func (p *Pipeline) adjudicatePrivate(ctx context.Context, state model.PipelineState) (model.StageUpdate, error) {
	bill := state.Bill
	logs := []string{
		"Adjuster: Initializing...",
		"Adjuster: Loading insurance adjuster persona...",
	}

	logs = append(logs, fmt.Sprintf("Adjuster: Analyzing claim for policy #%s", truncatePolicy(state.PolicyID)))
	logs = append(logs, fmt.Sprintf("Adjuster: Bill amount: %s", model.FormatMoney(bill.Total)))
	logs = append(logs, fmt.Sprintf("Adjuster: Services: %s", formatServices(bill.Services)))

	// Plan lookup is display-only: the fetched rate dresses the prompt and
	// the log, never the fallback multiplier.
	logs = append(logs, "Adjuster: Querying insurance database...")
	plan, err := p.lookup.FindPlan(ctx, p.cfg.DefaultProvider)
	if err != nil {
		plan = nil
	}
	if plan != nil {
		logs = append(logs, fmt.Sprintf("Adjuster: Found plan: %s %s", plan.Provider, plan.PlanName))
	} else {
		logs = append(logs, "Adjuster: No plan in database, using default coverage rates")
	}

	decision := Decision{Source: SourceRule}

	switch {
	case p.reasoning == nil || bill.Total <= 0:
		decision.Amount = p.policy.PrivateCoverage(bill.Total)
		logs = append(logs, fmt.Sprintf("Adjuster: Standard coverage applied: %s", model.FormatMoney(decision.Amount)))

	default:
		logs = append(logs, "Adjuster: Consulting reasoning service...")
		prompt := fmt.Sprintf(adjusterPromptTmpl,
			state.PolicyID,
			model.FormatMoney(bill.Total),
			formatServices(bill.Services),
			formatPlanContext(plan),
		)

		text, genErr := p.reasoning.Generate(ctx, prompt)
		if genErr != nil {
			if reasoning.IsRateLimited(genErr) {
				logs = append(logs, "Adjuster: Reasoning service is busy, using fallback calculation...")
			} else {
				logs = append(logs, "Adjuster: Reasoning service unavailable, using fallback calculation...")
			}
			decision.Amount = p.policy.PrivateCoverage(bill.Total)
			logs = append(logs, fmt.Sprintf("Adjuster: Fallback coverage: %s", model.FormatMoney(decision.Amount)))
			break
		}

		logs = append(logs, "Adjuster: Response received")
		parsed := ParseReply(text, adjusterFields)

		if r, ok := parsed.Text(fieldReasoning); ok {
			logs = append(logs, fmt.Sprintf("Adjuster [REASONING]: %s", truncateLine(r, 150)))
		}
		if a, ok := parsed.Text(fieldAssessment); ok {
			logs = append(logs, fmt.Sprintf("Adjuster [ASSESSMENT]: %s", a))
		}

		if amount, ok := parsed.Amount(fieldCoverageAmount); ok {
			decision = Decision{Amount: amount, Source: SourceExternal}
			logs = append(logs, fmt.Sprintf("Adjuster: Coverage approved: %s", model.FormatMoney(amount)))
		} else {
			decision.Amount = p.policy.PrivateCoverage(bill.Total)
			logs = append(logs, "Adjuster: Could not parse coverage amount from response, using fallback calculation...")
			logs = append(logs, fmt.Sprintf("Adjuster: Fallback coverage: %s", model.FormatMoney(decision.Amount)))
		}
	}

	logs = append(logs, "Adjuster: Analysis complete. Handing off to Social Worker...")

	return model.StageUpdate{PrivateCoverage: &decision.Amount, Log: logs}, nil
}

// truncatePolicy keeps only the leading 8 characters of a policy id for log
// lines.
func truncatePolicy(policyID string) string {
	if policyID == "" {
		return "N/A"
	}
	if len(policyID) > 8 {
		return policyID[:8]
	}
	return policyID
}

func truncateLine(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
