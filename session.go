package wanderer

import (
	"context"
	"net/http"
)

// SessionStatus tracks a session's health state machine.
// Sessions move good → degraded → bad as failures accumulate; a bad
// session is evicted and never returned by Acquire again.
type SessionStatus string

// Session health states.
const (
	SessionGood     SessionStatus = "good"
	SessionDegraded SessionStatus = "degraded"
	SessionBad      SessionStatus = "bad"
)

// Fingerprint is the browser identity a session presents.
type Fingerprint struct {
	UserAgent      string
	AcceptLanguage string
	Viewport       string
}

// Session is a crawl identity: a cookie jar, a fingerprint, and a proxy
// assignment reused across requests. The proxy assignment is fixed for the
// session's lifetime; changing proxies means creating a new session.
// Field mutation happens only inside the owning SessionRegistry.
type Session struct {
	ID          string
	Jar         http.CookieJar
	Fingerprint Fingerprint
	Proxy       ProxyAssignment
	UsageCount  int
	ErrorScore  int
	Status      SessionStatus
}

// SessionRegistry owns a bounded pool of crawl identities. It is shared
// mutable state across workers and must be safe for concurrent use.
// Registries are plain values injected into the orchestrator, not process
// globals, so tests can instantiate isolated pools.
type SessionRegistry interface {
	// Acquire returns a good session with remaining usage budget, creating
	// one if the pool is below its cap. When the pool is saturated and no
	// good session is free it blocks until one is released or evicted, or
	// until the context is canceled.
	Acquire(ctx context.Context) (*Session, error)

	// Release returns a session to the pool after a request completes.
	Release(s *Session)

	// MarkGood records a successful request on the session.
	MarkGood(s *Session)

	// MarkBad records a failed request. A session crossing the
	// consecutive-failure threshold is evicted from the pool; in-flight
	// requests already holding it are not canceled.
	MarkBad(s *Session)

	// Len returns the current pool size.
	Len() int
}
