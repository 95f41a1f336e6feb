package reasoning

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64
	Output float64
}

// CostTable maps model names to their token rates. Models not in the table
// cost zero rather than erroring; pricing is advisory, never load-bearing.
type CostTable map[string]ModelRate

// defaultCosts covers the models the pipeline is normally configured with.
var defaultCosts = CostTable{
	"claude-haiku-4-5-20251001":  {Input: 1.00, Output: 5.00},
	"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
}

// Cost computes the dollar cost of one call.
func (t CostTable) Cost(model string, inputTokens, outputTokens int64) float64 {
	rate, ok := t[model]
	if !ok {
		return 0
	}
	return (float64(inputTokens)/1e6)*rate.Input + (float64(outputTokens)/1e6)*rate.Output
}
