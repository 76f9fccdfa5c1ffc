package mock

import (
	"context"

	"github.com/SirWilliamIII/wanderer"
)

var _ wanderer.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of wanderer.Extractor.
type Extractor struct {
	FetchAndExtractFn func(ctx context.Context, url string, session *wanderer.Session) (*wanderer.Extraction, error)
	CloseFn           func() error
}

func (e *Extractor) FetchAndExtract(ctx context.Context, url string, session *wanderer.Session) (*wanderer.Extraction, error) {
	return e.FetchAndExtractFn(ctx, url, session)
}

func (e *Extractor) Close() error {
	if e.CloseFn == nil {
		return nil
	}
	return e.CloseFn()
}

var _ wanderer.SeedSource = (*SeedSource)(nil)

// SeedSource is a mock implementation of wanderer.SeedSource.
type SeedSource struct {
	DiscoverFn func(ctx context.Context, siteURL string) ([]string, error)
}

func (s *SeedSource) Discover(ctx context.Context, siteURL string) ([]string, error) {
	return s.DiscoverFn(ctx, siteURL)
}
