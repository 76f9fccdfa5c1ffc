package mock

import (
	"context"

	"github.com/SirWilliamIII/wanderer"
)

var _ wanderer.Classifier = (*Classifier)(nil)

// Classifier is a mock implementation of wanderer.Classifier.
type Classifier struct {
	ClassifyFn func(doc *wanderer.Document) wanderer.Category
}

func (c *Classifier) Classify(doc *wanderer.Document) wanderer.Category {
	if c.ClassifyFn == nil {
		return wanderer.CategoryGeneral
	}
	return c.ClassifyFn(doc)
}

var _ wanderer.DocumentBatcher = (*DocumentBatcher)(nil)

// DocumentBatcher is a mock implementation of wanderer.DocumentBatcher.
type DocumentBatcher struct {
	EnqueueFn func(doc *wanderer.Document)
	FlushFn   func(ctx context.Context) error
	CloseFn   func(ctx context.Context) error
}

func (b *DocumentBatcher) Enqueue(doc *wanderer.Document) {
	b.EnqueueFn(doc)
}

func (b *DocumentBatcher) Flush(ctx context.Context) error {
	if b.FlushFn == nil {
		return nil
	}
	return b.FlushFn(ctx)
}

func (b *DocumentBatcher) Close(ctx context.Context) error {
	if b.CloseFn == nil {
		return nil
	}
	return b.CloseFn(ctx)
}

var _ wanderer.DedupGate = (*DedupGate)(nil)

// DedupGate is a mock implementation of wanderer.DedupGate.
type DedupGate struct {
	RecentlyScrapedFn func(ctx context.Context, url string) (bool, error)
}

func (g *DedupGate) RecentlyScraped(ctx context.Context, url string) (bool, error) {
	if g.RecentlyScrapedFn == nil {
		return false, nil
	}
	return g.RecentlyScrapedFn(ctx, url)
}

var _ wanderer.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of wanderer.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if l.WaitFn == nil {
		return nil
	}
	return l.WaitFn(ctx, domain)
}

var _ wanderer.Politeness = (*Politeness)(nil)

// Politeness is a mock implementation of wanderer.Politeness.
type Politeness struct {
	AllowedFn func(ctx context.Context, rawURL string) bool
}

func (p *Politeness) Allowed(ctx context.Context, rawURL string) bool {
	if p.AllowedFn == nil {
		return true
	}
	return p.AllowedFn(ctx, rawURL)
}
