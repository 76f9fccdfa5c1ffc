package slog

import (
	"log/slog"

	"github.com/SirWilliamIII/wanderer"
)

// Ensure LoggingTierSelector implements wanderer.TierSelector.
var _ wanderer.TierSelector = (*LoggingTierSelector)(nil)

// LoggingTierSelector wraps a TierSelector, logging when assignments
// fall back across tiers so operators can see proxy pools draining.
// Calls are expected to be serialized by the owning session registry.
type LoggingTierSelector struct {
	next     wanderer.TierSelector
	logger   *slog.Logger
	lastTier wanderer.ProxyTier
}

// NewLoggingTierSelector creates a new LoggingTierSelector.
func NewLoggingTierSelector(next wanderer.TierSelector, logger *slog.Logger) *LoggingTierSelector {
	return &LoggingTierSelector{next: next, logger: logger}
}

// Next delegates to the wrapped selector, logging tier transitions.
func (s *LoggingTierSelector) Next() wanderer.ProxyAssignment {
	assignment := s.next.Next()
	if assignment.Tier != s.lastTier {
		if s.lastTier != "" {
			s.logger.Warn("proxy tier changed",
				"from", s.lastTier,
				"to", assignment.Tier,
			)
		}
		s.lastTier = assignment.Tier
	}
	return assignment
}

// MarkBad delegates to the wrapped selector.
func (s *LoggingTierSelector) MarkBad(assignment wanderer.ProxyAssignment) {
	s.logger.Warn("proxy endpoint marked bad",
		"tier", assignment.Tier,
		"url", assignment.URL,
	)
	s.next.MarkBad(assignment)
}

// Tiers delegates to the wrapped selector.
func (s *LoggingTierSelector) Tiers() []wanderer.ProxyTier {
	return s.next.Tiers()
}
