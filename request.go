package wanderer

import (
	"context"
	"time"
)

// Request represents a URL waiting to be crawled. A request is owned by the
// frontier until dispatched and is destroyed once it terminally succeeds or
// exhausts its retries.
type Request struct {
	URL          string
	Depth        int
	ParentURL    string
	DiscoveredAt time.Time
	RetryCount   int
}

// Child constructs a request for a link discovered on this request's page.
// The child's depth is always the parent's depth plus one.
func (r Request) Child(url string) Request {
	return Request{
		URL:          url,
		Depth:        r.Depth + 1,
		ParentURL:    r.URL,
		DiscoveredAt: time.Now().UTC(),
	}
}

// Frontier manages the pending-request queue with deduplication.
// It is the single source of truth for not-yet-processed work and must
// support concurrent push (link discovery) and pop (worker dispatch).
// Queue discipline is FIFO so crawls are approximately breadth-first
// and reproducible.
type Frontier interface {
	// Push adds a request to the queue.
	// Returns false if the URL has already been seen.
	Push(req Request) bool

	// Pop returns the oldest pending request.
	// Returns false if the queue is empty.
	Pop() (Request, bool)

	// Requeue puts a failed request back for another attempt without
	// consulting the seen-set.
	Requeue(req Request)

	// Len returns the number of pending requests.
	Len() int

	// Seen returns true if the URL has been queued or processed.
	Seen(url string) bool
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// Politeness decides whether a URL may be fetched at all, e.g. per the
// site's robots.txt. Implementations fail open: only an explicit
// disallow blocks a fetch.
type Politeness interface {
	Allowed(ctx context.Context, rawURL string) bool
}
