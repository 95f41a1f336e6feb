// Package reasoning wraps the Anthropic API behind the single capability the
// coordination pipeline needs: send a structured prompt, get back free text.
package reasoning

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned when no reasoning client is configured. Stages
// treat it like any other failure and apply their rule-based fallback.
var ErrUnavailable = errors.New("reasoning: client unavailable")

// RateLimitedError marks a call rejected by the upstream rate limiter. The
// fallback path is identical to any other error; only user-facing copy
// differs.
type RateLimitedError struct {
	Err error
}

func (e *RateLimitedError) Error() string {
	return "reasoning: rate limited: " + e.Err.Error()
}

func (e *RateLimitedError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether any error in the chain is a RateLimitedError.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}

// Client defines the reasoning-service capability used by the pipeline.
// Implementations must be safe for concurrent use by independent requests.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Option configures the SDK-backed client.
type Option func(*sdkClient)

// WithMaxTokens overrides the per-call completion token cap.
func WithMaxTokens(n int64) Option {
	return func(c *sdkClient) { c.maxTokens = n }
}

// WithRateLimit caps outbound requests per second across all pipeline runs
// sharing this client.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *sdkClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	costs     CostTable
}

// NewClient creates a reasoning client backed by the Anthropic SDK.
func NewClient(apiKey, model string, opts ...Option) Client {
	c := &sdkClient{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 1024,
		costs:     defaultCosts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *sdkClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "reasoning: limiter wait")
		}
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apierr *sdk.Error
		if errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests {
			return "", &RateLimitedError{Err: err}
		}
		return "", eris.Wrap(err, "reasoning: create message")
	}

	zap.L().Debug("reasoning: usage",
		zap.String("model", c.model),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
		zap.Float64("cost_usd", c.costs.Cost(c.model, msg.Usage.InputTokens, msg.Usage.OutputTokens)),
	)

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
