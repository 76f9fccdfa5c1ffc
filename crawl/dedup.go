package crawl

import (
	"context"
	"time"

	"github.com/SirWilliamIII/wanderer"
)

var _ wanderer.DedupGate = (*FreshnessGate)(nil)

// FreshnessGate implements wanderer.DedupGate over the document service.
// A URL successfully scraped within the freshness window is not dispatched
// again. The check is advisory: it runs before every dispatch but does not
// lock anything, so two discovery paths can still race on the same URL.
type FreshnessGate struct {
	documents wanderer.DocumentService
	window    time.Duration
	now       func() time.Time
}

// NewFreshnessGate creates a gate suppressing re-dispatch of URLs scraped
// within the window.
func NewFreshnessGate(documents wanderer.DocumentService, window time.Duration) *FreshnessGate {
	return &FreshnessGate{
		documents: documents,
		window:    window,
		now:       time.Now,
	}
}

// RecentlyScraped reports whether a successful record of the exact URL
// exists within the freshness window.
func (g *FreshnessGate) RecentlyScraped(ctx context.Context, url string) (bool, error) {
	return g.documents.FindRecentSuccess(ctx, url, g.now().Add(-g.window))
}
