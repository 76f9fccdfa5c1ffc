// Package proxy assigns sessions to rotating proxy tiers.
// Tiers are tried in priority order (direct, basic, premium) with
// round-robin rotation inside a tier. Exhausting every configured proxy
// degrades assignments to the direct tier instead of failing the crawl.
package proxy

import (
	"sync"

	"github.com/SirWilliamIII/wanderer"
)

// Compile-time interface verification.
var _ wanderer.TierSelector = (*Selector)(nil)

type tier struct {
	name      wanderer.ProxyTier
	endpoints []string
	dead      map[string]bool
	next      int
}

func (t *tier) live() int {
	n := 0
	for _, e := range t.endpoints {
		if !t.dead[e] {
			n++
		}
	}
	return n
}

// Selector implements wanderer.TierSelector over configured proxy pools.
// It is safe for concurrent use by multiple goroutines.
type Selector struct {
	mu    sync.Mutex
	tiers []*tier
}

// NewSelector builds the ordered tier list from the basic and premium
// pools. Empty pools are omitted; the implicit direct tier is always kept
// as the first fallback.
func NewSelector(basic, premium []string) *Selector {
	s := &Selector{}
	s.tiers = append(s.tiers, &tier{name: wanderer.TierDirect})
	if len(basic) > 0 {
		s.tiers = append(s.tiers, &tier{
			name:      wanderer.TierBasic,
			endpoints: basic,
			dead:      make(map[string]bool),
		})
	}
	if len(premium) > 0 {
		s.tiers = append(s.tiers, &tier{
			name:      wanderer.TierPremium,
			endpoints: premium,
			dead:      make(map[string]bool),
		})
	}
	return s
}

// Next returns the next proxy assignment: round-robin within the lowest
// tier that still has live endpoints, skipping the bare direct tier when a
// proxied tier is available. With every proxy marked bad it falls back to a
// direct assignment.
func (s *Selector) Next() wanderer.ProxyAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tiers {
		if len(t.endpoints) == 0 || t.live() == 0 {
			continue
		}
		for range t.endpoints {
			e := t.endpoints[t.next%len(t.endpoints)]
			t.next++
			if !t.dead[e] {
				return wanderer.ProxyAssignment{Tier: t.name, URL: e}
			}
		}
	}
	return wanderer.ProxyAssignment{Tier: wanderer.TierDirect}
}

// MarkBad removes an endpoint from rotation. Direct assignments are
// ignored; the direct tier can never be exhausted.
func (s *Selector) MarkBad(a wanderer.ProxyAssignment) {
	if a.Direct() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tiers {
		if t.name == a.Tier {
			t.dead[a.URL] = true
			return
		}
	}
}

// Tiers returns the configured tiers in priority order.
func (s *Selector) Tiers() []wanderer.ProxyTier {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]wanderer.ProxyTier, 0, len(s.tiers))
	for _, t := range s.tiers {
		names = append(names, t.name)
	}
	return names
}

// Exhausted reports whether every configured proxy endpoint is dead.
// Callers use it to log the degrade-to-direct fallback.
func (s *Selector) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	configured := false
	for _, t := range s.tiers {
		if len(t.endpoints) == 0 {
			continue
		}
		configured = true
		if t.live() > 0 {
			return false
		}
	}
	return configured
}
