package crawl

import (
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/SirWilliamIII/wanderer"
)

// Compile-time interface verification.
var _ wanderer.Frontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO pending-request queue with Bloom filter
// deduplication. FIFO discipline makes crawls approximately breadth-first
// and reproducible. It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.BloomFilter
	queue []wanderer.Request
}

// NewFrontier creates a Frontier sized for n expected URLs with the given
// false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewWithEstimates(n, fpRate),
	}
}

// Push adds a request to the queue.
// Returns false if the URL has already been seen. URL fragments are
// stripped before deduplication, so URLs differing only by fragment are
// considered duplicates.
func (f *Frontier) Push(req wanderer.Request) bool {
	req.URL = stripFragment(req.URL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.TestString(req.URL) {
		return false
	}
	f.seen.AddString(req.URL)
	f.queue = append(f.queue, req)
	return true
}

// Requeue puts a failed request back at the end of the queue for another
// attempt. The seen-set is not consulted: the URL is known, retrying it is
// the point.
func (f *Frontier) Requeue(req wanderer.Request) {
	req.URL = stripFragment(req.URL)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, req)
}

// Pop returns the oldest pending request.
// The bool result is false if the queue is empty.
func (f *Frontier) Pop() (wanderer.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return wanderer.Request{}, false
	}
	req := f.queue[0]
	f.queue = f.queue[1:]
	return req, true
}

// Len returns the number of pending requests.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been queued or processed.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	url := stripFragment(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.TestString(url)
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
