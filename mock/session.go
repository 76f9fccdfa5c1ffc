package mock

import (
	"context"

	"github.com/SirWilliamIII/wanderer"
)

var _ wanderer.SessionRegistry = (*SessionRegistry)(nil)

// SessionRegistry is a mock implementation of wanderer.SessionRegistry.
type SessionRegistry struct {
	AcquireFn  func(ctx context.Context) (*wanderer.Session, error)
	ReleaseFn  func(s *wanderer.Session)
	MarkGoodFn func(s *wanderer.Session)
	MarkBadFn  func(s *wanderer.Session)
	LenFn      func() int
}

func (r *SessionRegistry) Acquire(ctx context.Context) (*wanderer.Session, error) {
	return r.AcquireFn(ctx)
}

func (r *SessionRegistry) Release(s *wanderer.Session) {
	if r.ReleaseFn != nil {
		r.ReleaseFn(s)
	}
}

func (r *SessionRegistry) MarkGood(s *wanderer.Session) {
	if r.MarkGoodFn != nil {
		r.MarkGoodFn(s)
	}
}

func (r *SessionRegistry) MarkBad(s *wanderer.Session) {
	if r.MarkBadFn != nil {
		r.MarkBadFn(s)
	}
}

func (r *SessionRegistry) Len() int {
	if r.LenFn == nil {
		return 0
	}
	return r.LenFn()
}

var _ wanderer.TierSelector = (*TierSelector)(nil)

// TierSelector is a mock implementation of wanderer.TierSelector.
type TierSelector struct {
	NextFn    func() wanderer.ProxyAssignment
	MarkBadFn func(assignment wanderer.ProxyAssignment)
	TiersFn   func() []wanderer.ProxyTier
}

func (t *TierSelector) Next() wanderer.ProxyAssignment {
	if t.NextFn == nil {
		return wanderer.ProxyAssignment{Tier: wanderer.TierDirect}
	}
	return t.NextFn()
}

func (t *TierSelector) MarkBad(assignment wanderer.ProxyAssignment) {
	if t.MarkBadFn != nil {
		t.MarkBadFn(assignment)
	}
}

func (t *TierSelector) Tiers() []wanderer.ProxyTier {
	if t.TiersFn == nil {
		return []wanderer.ProxyTier{wanderer.TierDirect}
	}
	return t.TiersFn()
}
