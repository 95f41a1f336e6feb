package cob

import (
	"context"
	"fmt"
	"strings"

	"github.com/salus-health/benefits-cli/internal/model"
	"github.com/salus-health/benefits-cli/pkg/reasoning"
)

var socialWorkerFields = []string{
	fieldReasoning,
	fieldProgramFound,
	fieldAidAmount,
	fieldRecommendation,
}

// adjudicatePublic searches for government aid against the balance left
// after private insurance. A non-positive remaining short-circuits the stage
// entirely: no lookup, no reasoning call, zero aid.
func (p *Pipeline) adjudicatePublic(ctx context.Context, state model.PipelineState) (model.StageUpdate, error) {
	bill := state.Bill
	remaining := bill.Total - state.PrivateCoverage

	logs := []string{
		"Social Worker: Initializing...",
		"Social Worker: Loading social services expertise...",
	}
	logs = append(logs, fmt.Sprintf("Social Worker: Patient region: %s", state.Region))
	logs = append(logs, fmt.Sprintf("Social Worker: Remaining balance after insurance: %s", model.FormatMoney(remaining)))

	aid := 0.0

	if remaining <= 0 {
		logs = append(logs, "Social Worker: No remaining balance - patient fully covered!")
		logs = append(logs, "Social Worker: Search complete. Handing off to Coordinator...")
		return model.StageUpdate{PublicCoverage: &aid, Log: logs}, nil
	}

	logs = append(logs, "Social Worker: Querying government programs database...")
	program := p.findProgram(ctx, state.Region)
	if program != nil {
		logs = append(logs, fmt.Sprintf("Social Worker: Found program: %s", program.Name))
	} else {
		logs = append(logs, "Social Worker: No programs in database, using general knowledge")
	}

	decision := Decision{Source: SourceRule}

	if p.reasoning != nil {
		logs = append(logs, "Social Worker: Analyzing eligibility for assistance programs...")
		prompt := fmt.Sprintf(socialWorkerPromptTmpl,
			state.Region,
			model.FormatMoney(bill.Total),
			model.FormatMoney(state.PrivateCoverage),
			model.FormatMoney(remaining),
			formatServices(bill.Services),
			formatProgramContext(program),
		)

		text, genErr := p.reasoning.Generate(ctx, prompt)
		if genErr != nil {
			if reasoning.IsRateLimited(genErr) {
				logs = append(logs, "Social Worker: Reasoning service is busy, using fallback...")
			} else {
				logs = append(logs, "Social Worker: Reasoning service unavailable, using fallback...")
			}
			decision.Amount = p.policy.PublicAid(state.Region, remaining)
		} else {
			logs = append(logs, "Social Worker: Response received")
			parsed := ParseReply(text, socialWorkerFields)

			if r, ok := parsed.Text(fieldReasoning); ok {
				logs = append(logs, fmt.Sprintf("Social Worker [REASONING]: %s", truncateLine(r, 150)))
			}
			if name, ok := parsed.Text(fieldProgramFound); ok && !strings.EqualFold(name, "none") {
				logs = append(logs, fmt.Sprintf("Social Worker: Program identified: %s", name))
			}
			if rec, ok := parsed.Text(fieldRecommendation); ok {
				logs = append(logs, fmt.Sprintf("Social Worker [RECOMMENDATION]: %s", rec))
			}

			if amount, ok := parsed.Amount(fieldAidAmount); ok {
				decision = Decision{Amount: amount, Source: SourceExternal}
			} else {
				logs = append(logs, "Social Worker: Could not parse aid amount from response, using fallback...")
				decision.Amount = p.policy.PublicAid(state.Region, remaining)
			}
		}
	} else {
		logs = append(logs, "Social Worker: Checking local programs...")
		decision.Amount = p.policy.PublicAid(state.Region, remaining)
	}

	aid = decision.Amount
	if aid > 0 {
		logs = append(logs, fmt.Sprintf("Social Worker: Aid secured: %s", model.FormatMoney(aid)))
	} else {
		logs = append(logs, "Social Worker: No additional aid programs found")
	}
	logs = append(logs, "Social Worker: Search complete. Handing off to Coordinator...")

	return model.StageUpdate{PublicCoverage: &aid, Log: logs}, nil
}

// findProgram fetches the aid program for a region, retrying the configured
// fallback region when the requested one has none. Lookup errors degrade to
// "not found".
func (p *Pipeline) findProgram(ctx context.Context, region string) *model.ProgramRecord {
	program, err := p.lookup.FindProgram(ctx, region)
	if err != nil || program == nil {
		if p.cfg.FallbackRegion == "" || strings.EqualFold(region, p.cfg.FallbackRegion) {
			return nil
		}
		program, err = p.lookup.FindProgram(ctx, p.cfg.FallbackRegion)
		if err != nil {
			return nil
		}
	}
	return program
}
