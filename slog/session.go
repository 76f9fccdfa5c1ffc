// Package slog provides logging decorators for core interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/SirWilliamIII/wanderer"
)

// Ensure LoggingSessionRegistry implements wanderer.SessionRegistry.
var _ wanderer.SessionRegistry = (*LoggingSessionRegistry)(nil)

// LoggingSessionRegistry wraps a SessionRegistry with visibility into
// pool health: slow acquires, failure streaks, and evictions.
type LoggingSessionRegistry struct {
	next   wanderer.SessionRegistry
	logger *slog.Logger
}

// NewLoggingSessionRegistry creates a new LoggingSessionRegistry.
func NewLoggingSessionRegistry(next wanderer.SessionRegistry, logger *slog.Logger) *LoggingSessionRegistry {
	return &LoggingSessionRegistry{next: next, logger: logger}
}

// Acquire delegates to the wrapped registry, logging waits that suggest
// pool saturation.
func (r *LoggingSessionRegistry) Acquire(ctx context.Context) (*wanderer.Session, error) {
	begin := time.Now()
	sess, err := r.next.Acquire(ctx)
	elapsed := time.Since(begin)
	if err != nil {
		r.logger.Warn("session acquire failed",
			"waited", elapsed,
			"poolSize", r.next.Len(),
			"error", err,
		)
		return nil, err
	}
	if elapsed > time.Second {
		r.logger.Info("session acquire waited on saturated pool",
			"waited", elapsed,
			"session", sess.ID,
		)
	}
	return sess, nil
}

// Release delegates to the wrapped registry.
func (r *LoggingSessionRegistry) Release(s *wanderer.Session) {
	r.next.Release(s)
}

// MarkGood delegates to the wrapped registry.
func (r *LoggingSessionRegistry) MarkGood(s *wanderer.Session) {
	r.next.MarkGood(s)
}

// MarkBad delegates to the wrapped registry, logging state transitions.
// Eviction is detected by the pool shrinking.
func (r *LoggingSessionRegistry) MarkBad(s *wanderer.Session) {
	before := r.next.Len()
	r.next.MarkBad(s)
	if r.next.Len() < before {
		r.logger.Warn("session evicted",
			"session", s.ID,
			"errorScore", s.ErrorScore,
			"usageCount", s.UsageCount,
			"proxyTier", s.Proxy.Tier,
			"poolSize", r.next.Len(),
		)
		return
	}
	if s.Status == wanderer.SessionDegraded {
		r.logger.Info("session degraded",
			"session", s.ID,
			"errorScore", s.ErrorScore,
		)
	}
}

// Len delegates to the wrapped registry.
func (r *LoggingSessionRegistry) Len() int {
	return r.next.Len()
}
