// Package crawl provides crawl orchestration. It drives the per-URL
// fetch/extract/enqueue state machine over a bounded worker pool, applying
// the mode profile's budget, depth, delay, and filtering policy, and feeds
// terminal records through the classifier into the persistence batcher.
package crawl

import (
	"context"
	"log/slog"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SirWilliamIII/wanderer"
)

// DefaultAcquireTimeout bounds the wait for a free session so a pool
// saturated by failing sessions cannot deadlock a worker.
const DefaultAcquireTimeout = 30 * time.Second

// idlePoll is how often an idle worker re-checks the queue for work pushed
// by other workers.
const idlePoll = 20 * time.Millisecond

// Crawler orchestrates a crawl run. All collaborators are injected; tests
// instantiate isolated registries and mocks.
type Crawler struct {
	Profile    *wanderer.Profile
	Frontier   wanderer.Frontier
	Sessions   wanderer.SessionRegistry
	Engine     wanderer.Extractor
	Classifier wanderer.Classifier
	Batcher    wanderer.DocumentBatcher
	Dedup      wanderer.DedupGate

	// Limiter adds per-domain politeness spacing. Optional; the strict
	// profile configures one.
	Limiter wanderer.DomainLimiter

	// Politeness blocks URLs a site disallows via robots.txt. Optional;
	// strict mode honors it, wander mode leaves it nil.
	Politeness wanderer.Politeness

	Logger *slog.Logger

	// AcquireTimeout caps the wait for a session slot.
	// Defaults to DefaultAcquireTimeout.
	AcquireTimeout time.Duration

	// Sleep replaces the post-fetch delay wait. Tests inject it to
	// observe requested delays without real sleeping.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Result holds the aggregate counts of a crawl run.
type Result struct {
	Dispatched int
	Succeeded  int
	Failed     int
	Retried    int
	Skipped    int
}

// stats accumulates counts across workers.
type stats struct {
	mu sync.Mutex
	r  Result
}

func (s *stats) add(f func(*Result)) {
	s.mu.Lock()
	f(&s.r)
	s.mu.Unlock()
}

// Run crawls from the seed URLs until the request budget is exhausted or
// the pending queue is empty with no requests in flight. Cancellation stops
// new dispatches, lets in-flight requests finish or time out, then flushes
// the batcher before returning. A single URL's failure never aborts the
// run; the result reports aggregate counts.
func (c *Crawler) Run(ctx context.Context, seeds []string) (*Result, error) {
	if c.Profile == nil {
		return nil, wanderer.Errorf(wanderer.ECONFIG, "crawler requires a mode profile")
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for _, seed := range seeds {
		c.Frontier.Push(wanderer.Request{URL: seed, DiscoveredAt: time.Now().UTC()})
	}

	var (
		st         stats
		inflight   int64
		dispatched int64
		counterMu  sync.Mutex
	)
	reserve := func() bool {
		counterMu.Lock()
		defer counterMu.Unlock()
		if dispatched >= int64(c.Profile.MaxRequests) {
			return false
		}
		dispatched++
		return true
	}
	track := func(delta int64) int64 {
		counterMu.Lock()
		defer counterMu.Unlock()
		inflight += delta
		return inflight
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < c.Profile.MaxConcurrency; i++ {
		g.Go(func() error {
			for {
				if gctx.Err() != nil {
					return nil
				}
				req, ok := c.Frontier.Pop()
				if !ok {
					if track(0) == 0 {
						return nil
					}
					select {
					case <-gctx.Done():
						return nil
					case <-time.After(idlePoll):
					}
					continue
				}
				// A popped request counts as in flight immediately, so
				// idle siblings cannot observe empty-queue-and-idle and
				// exit while it is still being handled.
				track(1)
				proceed := c.process(gctx, logger, req, &st, reserve)
				track(-1)
				if !proceed {
					return nil
				}
			}
		})
	}
	_ = g.Wait()

	// Flush-on-shutdown is mandatory: buffered documents must reach the
	// datastore even when the run was canceled.
	if c.Batcher != nil {
		if err := c.Batcher.Flush(context.WithoutCancel(ctx)); err != nil {
			logger.Error("final batch flush failed", "error", err)
		}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	counterMu.Lock()
	st.r.Dispatched = int(dispatched)
	counterMu.Unlock()
	result := st.r

	logger.Info("crawl finished",
		"mode", c.Profile.Mode,
		"dispatched", result.Dispatched,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"retried", result.Retried,
		"skipped", result.Skipped,
	)
	return &result, nil
}

// process runs the per-URL state machine to completion:
// pending → dispatched → succeeded | failed, with failed requests
// requeued until retries are exhausted. It returns false when the
// request budget is exhausted and the worker should stop; skipped URLs
// do not charge the budget.
func (c *Crawler) process(ctx context.Context, logger *slog.Logger, req wanderer.Request, st *stats, reserve func() bool) bool {
	log := logger.With("url", req.URL, "depth", req.Depth)

	if c.Profile.SkipURL(req.URL) {
		st.add(func(r *Result) { r.Skipped++ })
		log.Info("skipping restricted URL")
		return true
	}

	if c.Politeness != nil && !c.Politeness.Allowed(ctx, req.URL) {
		st.add(func(r *Result) { r.Skipped++ })
		log.Info("skipping URL disallowed by robots.txt")
		return true
	}

	// Advisory freshness check before every dispatch. Errors fail open:
	// a broken dedup lookup must not stall the crawl.
	if c.Dedup != nil {
		recent, err := c.Dedup.RecentlyScraped(ctx, req.URL)
		if err != nil {
			log.Warn("dedup check failed", "error", err)
		} else if recent {
			st.add(func(r *Result) { r.Skipped++ })
			log.Info("skipping recently scraped URL")
			return true
		}
	}

	if !reserve() {
		return false
	}

	acquireTimeout := c.AcquireTimeout
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	actx, acancel := context.WithTimeout(ctx, acquireTimeout)
	sess, err := c.Sessions.Acquire(actx)
	acancel()
	if err != nil {
		c.fail(log, req, st, err)
		return true
	}
	defer c.Sessions.Release(sess)

	if c.Limiter != nil {
		if u, perr := url.Parse(req.URL); perr == nil {
			if err := c.Limiter.Wait(ctx, u.Hostname()); err != nil {
				return true // canceled while waiting
			}
		}
	}

	fctx, fcancel := context.WithTimeout(ctx, c.Profile.RequestTimeout)
	ext, err := c.Engine.FetchAndExtract(fctx, req.URL, sess)
	fcancel()
	if err != nil {
		c.Sessions.MarkBad(sess)
		c.fail(log, req, st, err)
		return true
	}

	// Human-like delay inside the worker's slot: throttles effective
	// throughput without starving concurrency.
	_ = c.wait(ctx, c.randomDelay())

	c.discoverLinks(req, ext.Links)

	doc := c.buildDocument(req, ext)
	doc.Category = c.Classifier.Classify(doc)
	c.Batcher.Enqueue(doc)

	c.Sessions.MarkGood(sess)
	st.add(func(r *Result) { r.Succeeded++ })
	log.Info("crawled",
		"category", doc.Category,
		"links", doc.LinkCount,
		"session", sess.ID,
		"proxyTier", sess.Proxy.Tier,
	)
	return true
}

// fail handles a dispatch failure: requeue while retries remain, otherwise
// persist a terminal failed record.
func (c *Crawler) fail(log *slog.Logger, req wanderer.Request, st *stats, cause error) {
	if req.RetryCount < c.Profile.MaxRetries {
		req.RetryCount++
		c.Frontier.Requeue(req)
		st.add(func(r *Result) { r.Retried++ })
		log.Warn("request failed, requeued", "retry", req.RetryCount, "error", cause)
		return
	}

	doc := &wanderer.Document{
		URL:        req.URL,
		Mode:       c.Profile.Mode,
		Depth:      req.Depth,
		ParentURL:  req.ParentURL,
		Status:     wanderer.StatusFailed,
		Error:      cause.Error(),
		RetryCount: req.RetryCount,
		Timestamp:  time.Now().UTC(),
	}
	doc.Category = c.Classifier.Classify(doc)
	c.Batcher.Enqueue(doc)

	st.add(func(r *Result) { r.Failed++ })
	log.Error("request failed terminally", "retries", req.RetryCount, "error", cause)
}

// discoverLinks enqueues followable links per the profile's strategy,
// depth cap, and restricted patterns.
func (c *Crawler) discoverLinks(req wanderer.Request, links []string) {
	if req.Depth >= c.Profile.MaxDepth {
		return
	}

	var host string
	if u, err := url.Parse(req.URL); err == nil {
		host = u.Hostname()
	}

	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		if c.Profile.LinkStrategy == wanderer.FollowSameDomain && u.Hostname() != host {
			continue
		}
		if c.Profile.SkipURL(link) {
			continue
		}
		c.Frontier.Push(req.Child(link))
	}
}

func (c *Crawler) buildDocument(req wanderer.Request, ext *wanderer.Extraction) *wanderer.Document {
	return &wanderer.Document{
		URL:         req.URL,
		Title:       ext.Title,
		Description: ext.Description,
		Text:        ext.Text,
		Headings:    ext.Headings,
		LinkCount:   ext.LinkCount,
		ImageCount:  ext.ImageCount,
		Products:    ext.Products,
		Mode:        c.Profile.Mode,
		Depth:       req.Depth,
		ParentURL:   req.ParentURL,
		Status:      wanderer.StatusSuccess,
		RetryCount:  req.RetryCount,
		Timestamp:   time.Now().UTC(),
	}
}

// randomDelay picks a uniformly random delay within the profile's bounds.
func (c *Crawler) randomDelay() time.Duration {
	min, max := c.Profile.MinDelay, c.Profile.MaxDelay
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func (c *Crawler) wait(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
