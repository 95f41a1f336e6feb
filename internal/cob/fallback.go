package cob

import (
	"strings"

	"github.com/salus-health/benefits-cli/internal/config"
)

// Source identifies which tier produced a coverage decision.
type Source string

const (
	// SourceExternal means the amount came from a parsed reasoning-service
	// reply.
	SourceExternal Source = "external"
	// SourceRule means the amount came from the deterministic fallback
	// tables.
	SourceRule Source = "rule"
)

// Decision is a coverage amount tagged with the tier that produced it, so
// callers and tests can assert which tier fired.
type Decision struct {
	Amount float64
	Source Source
}

// Policy computes coverage decisions from the rule tables alone, with no
// external calls. It is used whenever the reasoning service is absent, the
// call fails, or the reply does not parse.
type Policy struct {
	cfg config.CoverageConfig
}

// NewPolicy builds a Policy from configured rates and region rules.
func NewPolicy(cfg config.CoverageConfig) Policy {
	return Policy{cfg: cfg}
}

// PrivateCoverage applies the flat default coverage rate to the bill total.
// Any rate fetched from a plan record is display-only; the fallback
// multiplier is always the configured default.
func (p Policy) PrivateCoverage(total float64) float64 {
	return total * p.cfg.PrivateFallbackRate
}

// PublicAid applies the region rule table to the remaining balance. The
// table is total: a region with no configured rule maps to zero aid, and a
// non-positive remaining always yields zero.
func (p Policy) PublicAid(region string, remaining float64) float64 {
	if remaining <= 0 {
		return 0
	}
	rule, ok := p.cfg.AidRules[strings.ToLower(region)]
	if !ok {
		return 0
	}
	aid := remaining * rule.Share
	if rule.Cap > 0 && aid > rule.Cap {
		aid = rule.Cap
	}
	if aid > remaining {
		aid = remaining
	}
	return aid
}
