package main

import (
	"context"
	"fmt"
	"time"

	"github.com/SirWilliamIII/wanderer"
	"github.com/SirWilliamIII/wanderer/batch"
	"github.com/SirWilliamIII/wanderer/classify"
	"github.com/SirWilliamIII/wanderer/crawl"
	"github.com/SirWilliamIII/wanderer/goquery"
	wandererhttp "github.com/SirWilliamIII/wanderer/http"
	"github.com/SirWilliamIII/wanderer/proxy"
	"github.com/SirWilliamIII/wanderer/session"
	wandererslog "github.com/SirWilliamIII/wanderer/slog"
	"github.com/SirWilliamIII/wanderer/trafilatura"
)

// frontierCapacity sizes the seen-set bloom filter. Generous relative
// to any realistic request budget.
const frontierCapacity = 1_000_000

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	cfg := deps.Config

	seeds := append(append([]string{}, c.Seeds...), cfg.Seeds...)
	if len(seeds) == 0 {
		return wanderer.Errorf(wanderer.EINVALID, "at least one seed URL is required (argument or config seeds)")
	}

	var opts []wanderer.ProfileOption
	if c.MaxRequests > 0 {
		opts = append(opts, wanderer.WithMaxRequests(c.MaxRequests))
	}
	if c.Depth > 0 {
		opts = append(opts, wanderer.WithMaxDepth(c.Depth))
	}
	if c.Concurrency > 0 {
		opts = append(opts, wanderer.WithConcurrency(c.Concurrency))
	}
	if len(cfg.RestrictedPatterns) > 0 {
		opts = append(opts, wanderer.WithRestrictedPatterns(cfg.RestrictedPatterns))
	}

	profile, err := wanderer.ResolveProfile(c.Mode, opts...)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wanderer.ErrorMessage(err))
		return err
	}

	if c.Sitemap {
		seeds, err = c.expandSeeds(deps, seeds)
		if err != nil {
			return err
		}
	}

	selector := wandererslog.NewLoggingTierSelector(
		proxy.NewSelector(cfg.Proxies.Basic, cfg.Proxies.Premium),
		deps.Logger,
	)
	sessions := wandererslog.NewLoggingSessionRegistry(
		session.NewRegistry(profile.SessionPoolCap, selector),
		deps.Logger,
	)

	engine := wandererhttp.NewEngine(
		goquery.NewExtractor(profile.LinkSelector),
		trafilatura.NewTextExtractor(),
	)
	defer engine.Close()

	var batchOpts []batch.Option
	if cfg.Batch.Size > 0 {
		batchOpts = append(batchOpts, batch.WithSize(cfg.Batch.Size))
	}
	if cfg.Batch.DebounceSeconds > 0 {
		batchOpts = append(batchOpts, batch.WithDebounce(time.Duration(cfg.Batch.DebounceSeconds)*time.Second))
	}
	batcher := batch.NewBatcher(deps.Documents, deps.Logger, batchOpts...)

	crawler := &crawl.Crawler{
		Profile:    profile,
		Frontier:   crawl.NewFrontier(frontierCapacity, 0.01),
		Sessions:   sessions,
		Engine:     engine,
		Classifier: classify.NewDefault(),
		Batcher:    batcher,
		Logger:     deps.Logger,
	}
	if cfg.FreshnessHours > 0 {
		crawler.Dedup = crawl.NewFreshnessGate(deps.Documents, cfg.FreshnessWindow())
	}
	if profile.DomainRPS > 0 {
		crawler.Limiter = crawl.NewDomainLimiter(profile.DomainRPS)
	}
	if profile.Mode == wanderer.ModeStrict {
		crawler.Politeness = wandererhttp.NewRobotsAgent(nil, cfg.UserAgent)
	}

	result, err := crawler.Run(deps.Ctx, seeds)

	// The crawler flushes on shutdown; Close also stops the debounce
	// timer and drains anything enqueued after the final flush.
	if cerr := batcher.Close(context.WithoutCancel(deps.Ctx)); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wanderer.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Crawl finished (%s mode)\n", profile.Mode)
	fmt.Fprintf(deps.Stdout, "  dispatched %d, succeeded %d, failed %d, retried %d, skipped %d\n",
		result.Dispatched, result.Succeeded, result.Failed, result.Retried, result.Skipped)
	return nil
}

// expandSeeds grows the seed list with URLs discovered in each site's
// sitemap. Sites without sitemaps keep their original seed.
func (c *CrawlCmd) expandSeeds(deps *Dependencies, seeds []string) ([]string, error) {
	expanded := append([]string{}, seeds...)
	for _, seed := range seeds {
		urls, err := deps.Seeds.Discover(deps.Ctx, seed)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "  sitemap discovery failed for %s: %s\n", seed, wanderer.ErrorMessage(err))
			continue
		}
		if len(urls) > 0 {
			fmt.Fprintf(deps.Stdout, "  Found %d sitemap URLs for %s\n", len(urls), seed)
			expanded = append(expanded, urls...)
		}
	}
	return expanded, nil
}
