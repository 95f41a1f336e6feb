package cob

import (
	"context"
	"fmt"
	"strings"

	"github.com/salus-health/benefits-cli/internal/model"
)

// extract normalizes the caller-supplied bill and narrates what was found.
// It makes no external calls and is a total function of its input.
func (p *Pipeline) extract(_ context.Context, state model.PipelineState) (model.StageUpdate, error) {
	logs := []string{"Extractor: Starting bill analysis..."}

	bill := state.Bill.Normalized()

	logs = append(logs, fmt.Sprintf("Extractor: Document source: %s", bill.Provider))

	if len(bill.Services) > 0 {
		preview := bill.Services
		if len(preview) > 3 {
			preview = preview[:3]
		}
		logs = append(logs, fmt.Sprintf("Extractor: Found %d service(s): %s",
			len(bill.Services), strings.Join(preview, ", ")))
	}

	logs = append(logs, fmt.Sprintf("Extractor: Total bill amount: %s", model.FormatMoney(bill.Total)))
	logs = append(logs, "Extractor: Analysis complete. Passing to Adjuster...")

	return model.StageUpdate{Bill: &bill, Log: logs}, nil
}
