package cob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReply_BasicFields(t *testing.T) {
	text := "REASONING: The claim covers standard services.\nCOVERAGE_AMOUNT: 350.00\nASSESSMENT: Approved."
	parsed := ParseReply(text, []string{"REASONING", "COVERAGE_AMOUNT", "ASSESSMENT"})

	r, ok := parsed.Text("REASONING")
	assert.True(t, ok)
	assert.Equal(t, "The claim covers standard services.", r)

	amount, ok := parsed.Amount("COVERAGE_AMOUNT")
	assert.True(t, ok)
	assert.Equal(t, 350.00, amount)

	a, ok := parsed.Text("ASSESSMENT")
	assert.True(t, ok)
	assert.Equal(t, "Approved.", a)
}

func TestParseReply_CurrencyAndCommas(t *testing.T) {
	parsed := ParseReply("COVERAGE_AMOUNT: $3,500.00", []string{"COVERAGE_AMOUNT"})
	amount, ok := parsed.Amount("COVERAGE_AMOUNT")
	assert.True(t, ok)
	assert.Equal(t, 3500.00, amount)
}

func TestParseReply_TrailingText(t *testing.T) {
	parsed := ParseReply("AID_AMOUNT: $150.00 per the ODB schedule", []string{"AID_AMOUNT"})
	amount, ok := parsed.Amount("AID_AMOUNT")
	assert.True(t, ok)
	assert.Equal(t, 150.00, amount)
}

func TestParseReply_PercentSuffix(t *testing.T) {
	parsed := ParseReply("COVERAGE_RATE: 80%", []string{"COVERAGE_RATE"})
	rate, ok := parsed.Amount("COVERAGE_RATE")
	assert.True(t, ok)
	assert.Equal(t, 80.0, rate)
}

func TestParseReply_LastOccurrenceWins(t *testing.T) {
	text := "COVERAGE_AMOUNT: 100\nSome interlude.\nCOVERAGE_AMOUNT: 250"
	parsed := ParseReply(text, []string{"COVERAGE_AMOUNT"})
	amount, ok := parsed.Amount("COVERAGE_AMOUNT")
	assert.True(t, ok)
	assert.Equal(t, 250.0, amount)
}

func TestParseReply_TokenMidLine(t *testing.T) {
	parsed := ParseReply("Here is my SUMMARY: all benefits applied", []string{"SUMMARY"})
	s, ok := parsed.Text("SUMMARY")
	assert.True(t, ok)
	assert.Equal(t, "all benefits applied", s)
}

func TestParseReply_CaseSensitive(t *testing.T) {
	parsed := ParseReply("coverage_amount: 100", []string{"COVERAGE_AMOUNT"})
	_, ok := parsed.Text("COVERAGE_AMOUNT")
	assert.False(t, ok)
}

func TestParseReply_AbsentField(t *testing.T) {
	parsed := ParseReply("REASONING: nothing else here", []string{"REASONING", "COVERAGE_AMOUNT"})
	_, ok := parsed.Amount("COVERAGE_AMOUNT")
	assert.False(t, ok)
}

func TestParseReply_NonNumericValue(t *testing.T) {
	parsed := ParseReply("COVERAGE_AMOUNT: to be determined", []string{"COVERAGE_AMOUNT"})

	raw, ok := parsed.Text("COVERAGE_AMOUNT")
	assert.True(t, ok)
	assert.Equal(t, "to be determined", raw)

	_, ok = parsed.Amount("COVERAGE_AMOUNT")
	assert.False(t, ok)
}

func TestParseReply_NegativeAmountRejected(t *testing.T) {
	parsed := ParseReply("AID_AMOUNT: -50", []string{"AID_AMOUNT"})
	_, ok := parsed.Amount("AID_AMOUNT")
	assert.False(t, ok)

	// Still present as text.
	raw, ok := parsed.Text("AID_AMOUNT")
	assert.True(t, ok)
	assert.Equal(t, "-50", raw)
}

func TestParseReply_EmptyInput(t *testing.T) {
	parsed := ParseReply("", []string{"SUMMARY"})
	assert.Empty(t, parsed)
}

func TestParseReply_EmptyValue(t *testing.T) {
	parsed := ParseReply("SUMMARY:", []string{"SUMMARY"})
	s, ok := parsed.Text("SUMMARY")
	assert.True(t, ok)
	assert.Equal(t, "", s)
}
