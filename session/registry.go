// Package session manages the bounded pool of crawl identities.
// A session bundles a cookie jar, a randomized browser fingerprint, and a
// fixed proxy assignment. Health is an explicit state machine
// (good → degraded → bad) driven by request outcomes; bad sessions are
// evicted and replaced lazily.
package session

import (
	"context"
	"math/rand"
	"net/http/cookiejar"
	"sync"

	"github.com/google/uuid"

	"github.com/SirWilliamIII/wanderer"
)

// Compile-time interface verification.
var _ wanderer.SessionRegistry = (*Registry)(nil)

// Health thresholds for the per-session state machine.
const (
	// degradeAfter consecutive failures moves a session to degraded.
	degradeAfter = 1

	// evictAfter consecutive failures moves a session to bad and evicts it.
	evictAfter = 3

	// defaultUsageCap retires a session after this many completed
	// requests even if it never failed.
	defaultUsageCap = 50
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
}

var viewports = []string{"1920x1080", "1536x864", "1440x900", "1366x768"}

// Registry implements wanderer.SessionRegistry with a mode-bounded pool.
// It is safe for concurrent use by multiple workers.
type Registry struct {
	proxies  wanderer.TierSelector
	cap      int
	usageCap int

	mu      sync.Mutex
	pool    map[string]*wanderer.Session // every live session, by ID
	free    []*wanderer.Session          // good sessions not currently held
	freedCh chan struct{}                // pinged on release and eviction
}

// Option configures a Registry.
type Option func(*Registry)

// WithUsageCap overrides the per-session request budget.
func WithUsageCap(n int) Option {
	return func(r *Registry) { r.usageCap = n }
}

// NewRegistry creates a Registry holding at most cap sessions, assigning
// proxies through the given selector.
func NewRegistry(cap int, proxies wanderer.TierSelector, opts ...Option) *Registry {
	r := &Registry{
		proxies:  proxies,
		cap:      cap,
		usageCap: defaultUsageCap,
		pool:     make(map[string]*wanderer.Session),
		freedCh:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire returns a good session with remaining usage budget, creating one
// lazily while the pool is below its cap. Under saturation it blocks until
// a session is released or evicted, or the context is canceled. The pool
// never exceeds its cap.
func (r *Registry) Acquire(ctx context.Context) (*wanderer.Session, error) {
	for {
		r.mu.Lock()
		if s := r.takeFreeLocked(); s != nil {
			r.mu.Unlock()
			return s, nil
		}
		if len(r.pool) < r.cap {
			s, err := r.createLocked()
			r.mu.Unlock()
			return s, err
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, wanderer.Errorf(wanderer.EINTERNAL, "session acquire: %v", ctx.Err())
		case <-r.freedCh:
		}
	}
}

// takeFreeLocked pops a usable free session, retiring saturated ones.
func (r *Registry) takeFreeLocked() *wanderer.Session {
	for len(r.free) > 0 {
		s := r.free[len(r.free)-1]
		r.free = r.free[:len(r.free)-1]
		if s.Status == wanderer.SessionBad {
			continue // evicted while queued
		}
		if s.UsageCount >= r.usageCap {
			delete(r.pool, s.ID)
			continue
		}
		return s
	}
	return nil
}

func (r *Registry) createLocked() (*wanderer.Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, wanderer.Errorf(wanderer.EINTERNAL, "cookie jar: %v", err)
	}
	s := &wanderer.Session{
		ID:  uuid.New().String(),
		Jar: jar,
		Fingerprint: wanderer.Fingerprint{
			UserAgent:      userAgents[rand.Intn(len(userAgents))],
			AcceptLanguage: "en-US,en;q=0.9",
			Viewport:       viewports[rand.Intn(len(viewports))],
		},
		Proxy:  r.proxies.Next(),
		Status: wanderer.SessionGood,
	}
	r.pool[s.ID] = s
	return s, nil
}

// Release returns a session to the free list. Bad sessions are not
// returned; their pool slot was already freed by eviction.
func (r *Registry) Release(s *wanderer.Session) {
	r.mu.Lock()
	if _, ok := r.pool[s.ID]; ok && s.Status != wanderer.SessionBad {
		r.free = append(r.free, s)
	}
	r.mu.Unlock()
	r.ping()
}

// MarkGood records a successful request: the failure streak resets and the
// session returns to the good state.
func (r *Registry) MarkGood(s *wanderer.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.UsageCount++
	s.ErrorScore = 0
	if s.Status != wanderer.SessionBad {
		s.Status = wanderer.SessionGood
	}
}

// MarkBad records a failed request. Crossing the eviction threshold marks
// the session bad, removes it from the pool, and flags its proxy endpoint.
// In-flight requests still holding the session are not canceled.
func (r *Registry) MarkBad(s *wanderer.Session) {
	r.mu.Lock()

	s.UsageCount++
	s.ErrorScore++
	switch {
	case s.ErrorScore >= evictAfter:
		s.Status = wanderer.SessionBad
		delete(r.pool, s.ID)
		if !s.Proxy.Direct() {
			r.proxies.MarkBad(s.Proxy)
		}
	case s.ErrorScore >= degradeAfter:
		s.Status = wanderer.SessionDegraded
	}
	evicted := s.Status == wanderer.SessionBad

	r.mu.Unlock()

	if evicted {
		r.ping() // a pool slot opened up
	}
}

// Len returns the current pool size, including sessions in use.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pool)
}

func (r *Registry) ping() {
	select {
	case r.freedCh <- struct{}{}:
	default:
	}
}
