package reasoning

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRateLimited(t *testing.T) {
	base := errors.New("429 too many requests")
	rl := &RateLimitedError{Err: base}

	assert.True(t, IsRateLimited(rl))
	assert.True(t, IsRateLimited(eris.Wrap(rl, "stage call")))
	assert.False(t, IsRateLimited(base))
	assert.False(t, IsRateLimited(nil))
}

func TestRateLimitedError_Unwrap(t *testing.T) {
	base := errors.New("429")
	rl := &RateLimitedError{Err: base}

	assert.True(t, errors.Is(rl, base))
	assert.Contains(t, rl.Error(), "rate limited")
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("test-key", "claude-haiku-4-5-20251001")

	sc, ok := c.(*sdkClient)
	require.True(t, ok)
	assert.Equal(t, int64(1024), sc.maxTokens)
	assert.Nil(t, sc.limiter)
}

func TestNewClient_Options(t *testing.T) {
	c := NewClient("test-key", "claude-haiku-4-5-20251001",
		WithMaxTokens(2048),
		WithRateLimit(2, 4),
	)

	sc, ok := c.(*sdkClient)
	require.True(t, ok)
	assert.Equal(t, int64(2048), sc.maxTokens)
	require.NotNil(t, sc.limiter)
	assert.Equal(t, 4, sc.limiter.Burst())
}

func TestCostTable(t *testing.T) {
	table := CostTable{"claude-haiku-4-5-20251001": {Input: 1.00, Output: 5.00}}

	// 1M input + 1M output tokens.
	assert.InDelta(t, 6.00, table.Cost("claude-haiku-4-5-20251001", 1_000_000, 1_000_000), 0.0001)
	// Unknown models are free rather than an error.
	assert.Equal(t, 0.0, table.Cost("unknown-model", 1_000_000, 0))
}
