package cob

import (
	"context"
	"fmt"
	"strings"

	"github.com/salus-health/benefits-cli/internal/model"
)

var coordinatorFields = []string{
	fieldSummary,
	fieldSavings,
	fieldFinalMessage,
}

// coordinate is the terminal stage. It is the single point where
// over-coverage from upstream is clamped: finalCost never goes below zero,
// but privateCoverage and publicCoverage are left as the earlier stages set
// them.
func (p *Pipeline) coordinate(ctx context.Context, state model.PipelineState) (model.StageUpdate, error) {
	total := state.Bill.Total
	private := state.PrivateCoverage
	public := state.PublicCoverage

	finalCost := total - private - public
	if finalCost < 0 {
		finalCost = 0
	}

	logs := []string{
		"Coordinator: Initializing...",
		"Coordinator: Reviewing all benefits...",
	}
	logs = append(logs, fmt.Sprintf("Coordinator: Original bill: %s", model.FormatMoney(total)))
	logs = append(logs, fmt.Sprintf("Coordinator: Private insurance contribution: %s", model.FormatMoney(private)))
	logs = append(logs, fmt.Sprintf("Coordinator: Government aid contribution: %s", model.FormatMoney(public)))
	logs = append(logs, "Coordinator: Calculating final patient responsibility...")

	summary := p.templatedSummary(finalCost)

	if p.reasoning != nil {
		logs = append(logs, "Coordinator: Generating final report...")
		prompt := fmt.Sprintf(coordinatorPromptTmpl,
			model.FormatMoney(total),
			model.FormatMoney(private),
			model.FormatMoney(public),
			model.FormatMoney(finalCost),
		)

		text, genErr := p.reasoning.Generate(ctx, prompt)
		if genErr != nil {
			logs = append(logs, "Coordinator: Using standard summary...")
			logs = append(logs, fmt.Sprintf("Coordinator: %s", summary))
		} else {
			parsed := ParseReply(text, coordinatorFields)
			if s, ok := parsed.Text(fieldSummary); ok && s != "" {
				summary = s
				logs = append(logs, fmt.Sprintf("Coordinator [SUMMARY]: %s", s))
			}
			if sv, ok := parsed.Text(fieldSavings); ok {
				logs = append(logs, fmt.Sprintf("Coordinator [SAVINGS]: %s", sv))
			}
			if fm, ok := parsed.Text(fieldFinalMessage); ok {
				logs = append(logs, fmt.Sprintf("Coordinator [FINAL]: %s", fm))
			}
		}
	} else {
		logs = append(logs, fmt.Sprintf("Coordinator: Final amount: %s", model.FormatMoney(finalCost)))
	}

	logs = append(logs, "Coordinator: Coordination of Benefits complete!")
	logs = append(logs, strings.Repeat("=", 50))
	logs = append(logs, fmt.Sprintf("FINAL RESULT: Patient pays %s", model.FormatMoney(finalCost)))
	logs = append(logs, strings.Repeat("=", 50))

	return model.StageUpdate{
		FinalCost: &finalCost,
		Summary:   &summary,
		Log:       logs,
	}, nil
}

// templatedSummary is the no-reasoning summary, with a distinct tier for a
// fully covered bill.
func (p *Pipeline) templatedSummary(finalCost float64) string {
	if finalCost == 0 {
		return "Great news! Your bill is fully covered through coordinated benefits."
	}
	return fmt.Sprintf("Through coordinated benefits, your responsibility is %s.", model.FormatMoney(finalCost))
}
