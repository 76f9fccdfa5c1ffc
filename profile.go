package wanderer

import (
	"time"

	"github.com/gobwas/glob"
)

// Mode selects one of the two crawl behavior profiles.
type Mode string

// Recognized crawl modes.
const (
	// ModeWander is the aggressive profile: broad link discovery, large
	// session pool, no restricted-pattern filtering.
	ModeWander Mode = "wander"

	// ModeStrict is the polite profile: same-domain links only, small
	// trusted session pool, restricted patterns and robots.txt honored.
	ModeStrict Mode = "strict"
)

// LinkStrategy determines which discovered links are followed.
type LinkStrategy string

// Link-following strategies.
const (
	// FollowAll follows every discovered link regardless of host.
	FollowAll LinkStrategy = "all"

	// FollowSameDomain follows only links on the seed's host.
	FollowSameDomain LinkStrategy = "same-domain"
)

// Profile is the immutable per-run configuration for a crawl mode.
// It is created once at startup by ResolveProfile and never mutated.
type Profile struct {
	Mode           Mode
	MaxRequests    int
	MaxConcurrency int
	RequestTimeout time.Duration
	MinDelay       time.Duration
	MaxDelay       time.Duration
	LinkStrategy   LinkStrategy
	LinkSelector   string
	MaxDepth       int
	MaxRetries     int

	// SessionPoolCap bounds the number of concurrent crawl identities.
	// Wander burns through a large pool; strict preserves a small one.
	SessionPoolCap int

	// DomainRPS caps requests per second per domain. Zero disables the
	// limiter. Only the strict profile sets it.
	DomainRPS float64

	// RestrictedPatterns lists URL patterns that strict mode refuses to
	// dispatch. Patterns are matched anywhere in the URL.
	RestrictedPatterns []string

	restricted []glob.Glob
}

// ProfileOption overrides a default profile field at resolution time.
type ProfileOption func(*Profile)

// WithMaxRequests overrides the request budget.
func WithMaxRequests(n int) ProfileOption {
	return func(p *Profile) { p.MaxRequests = n }
}

// WithMaxDepth overrides the link-following depth cap.
func WithMaxDepth(n int) ProfileOption {
	return func(p *Profile) { p.MaxDepth = n }
}

// WithConcurrency overrides the worker pool size.
func WithConcurrency(n int) ProfileOption {
	return func(p *Profile) { p.MaxConcurrency = n }
}

// WithDelayBounds overrides the randomized inter-request delay bounds.
func WithDelayBounds(min, max time.Duration) ProfileOption {
	return func(p *Profile) {
		p.MinDelay = min
		p.MaxDelay = max
	}
}

// WithRestrictedPatterns replaces the restricted URL pattern set.
func WithRestrictedPatterns(patterns []string) ProfileOption {
	return func(p *Profile) { p.RestrictedPatterns = patterns }
}

// ResolveProfile returns the immutable profile for a mode token.
// It is deterministic and total over the two recognized tokens; any other
// token yields an ECONFIG error and the caller must supply a default.
func ResolveProfile(mode string, opts ...ProfileOption) (*Profile, error) {
	var p *Profile
	switch Mode(mode) {
	case ModeWander:
		p = &Profile{
			Mode:           ModeWander,
			MaxRequests:    500,
			MaxConcurrency: 8,
			RequestTimeout: 15 * time.Second,
			MinDelay:       500 * time.Millisecond,
			MaxDelay:       1500 * time.Millisecond,
			LinkStrategy:   FollowAll,
			LinkSelector:   "a[href]",
			MaxDepth:       5,
			MaxRetries:     2,
			SessionPoolCap: 20,
		}
	case ModeStrict:
		p = &Profile{
			Mode:           ModeStrict,
			MaxRequests:    100,
			MaxConcurrency: 2,
			RequestTimeout: 30 * time.Second,
			MinDelay:       2 * time.Second,
			MaxDelay:       5 * time.Second,
			LinkStrategy:   FollowSameDomain,
			LinkSelector:   "a[href]",
			MaxDepth:       3,
			MaxRetries:     3,
			SessionPoolCap: 4,
			DomainRPS:      0.5,
			RestrictedPatterns: []string{
				"/admin/", "/login", "/logout", "/signup",
				"/cart", "/checkout", "/account",
			},
		}
	default:
		return nil, Errorf(ECONFIG, "unknown crawl mode %q", mode)
	}

	for _, opt := range opts {
		opt(p)
	}

	for _, pattern := range p.RestrictedPatterns {
		g, err := glob.Compile("*" + pattern + "*")
		if err != nil {
			return nil, Errorf(ECONFIG, "invalid restricted pattern %q: %v", pattern, err)
		}
		p.restricted = append(p.restricted, g)
	}

	return p, nil
}

// SkipURL reports whether the URL matches a restricted pattern.
// Only strict mode filters; wander mode never skips.
func (p *Profile) SkipURL(rawURL string) bool {
	if p.Mode != ModeStrict {
		return false
	}
	for _, g := range p.restricted {
		if g.Match(rawURL) {
			return true
		}
	}
	return false
}
