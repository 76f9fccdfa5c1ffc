package wanderer

// ProxyTier identifies a prioritized proxy pool. Sessions are assigned to
// the lowest still-available tier; the direct tier is always the final
// fallback so proxy exhaustion degrades the crawl rather than failing it.
type ProxyTier string

// Proxy tiers in priority order.
const (
	TierDirect  ProxyTier = "direct"
	TierBasic   ProxyTier = "basic"
	TierPremium ProxyTier = "premium"
)

// ProxyAssignment binds a session to a concrete proxy endpoint.
// A direct assignment has an empty URL.
type ProxyAssignment struct {
	Tier ProxyTier
	URL  string
}

// Direct reports whether the assignment bypasses proxies entirely.
func (a ProxyAssignment) Direct() bool {
	return a.Tier == TierDirect || a.URL == ""
}

// TierSelector assigns proxy endpoints to new sessions.
type TierSelector interface {
	// Next returns the next assignment, round-robin within the lowest
	// tier that still has live endpoints. When every configured proxy
	// has been marked bad it returns a direct assignment.
	Next() ProxyAssignment

	// MarkBad removes an endpoint from rotation.
	MarkBad(assignment ProxyAssignment)

	// Tiers returns the configured tiers in priority order.
	Tiers() []ProxyTier
}
