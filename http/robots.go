package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/SirWilliamIII/wanderer"
)

// DefaultRobotsTTL is how long fetched robots.txt rules are cached.
const DefaultRobotsTTL = 30 * time.Minute

// Ensure RobotsAgent implements wanderer.Politeness at compile time.
var _ wanderer.Politeness = (*RobotsAgent)(nil)

// RobotsAgent evaluates robots.txt rules with a per-host cache. It fails
// open: missing, broken, or unfetchable robots.txt files allow
// everything, only an explicit disallow blocks a URL.
type RobotsAgent struct {
	client    *http.Client
	userAgent string
	ttl       time.Duration

	mu    sync.RWMutex
	cache map[string]robotsEntry
}

type robotsEntry struct {
	fetched time.Time
	rules   *robotstxt.RobotsData
}

// RobotsOption configures a RobotsAgent.
type RobotsOption func(*RobotsAgent)

// WithRobotsTTL sets the cache lifetime for fetched rules.
func WithRobotsTTL(ttl time.Duration) RobotsOption {
	return func(a *RobotsAgent) {
		a.ttl = ttl
	}
}

// NewRobotsAgent creates a RobotsAgent that identifies as userAgent.
// If client is nil a default client with a 10s timeout is used.
func NewRobotsAgent(client *http.Client, userAgent string, opts ...RobotsOption) *RobotsAgent {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	a := &RobotsAgent{
		client:    client,
		userAgent: userAgent,
		ttl:       DefaultRobotsTTL,
		cache:     make(map[string]robotsEntry),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allowed reports whether the target URL may be fetched.
func (a *RobotsAgent) Allowed(ctx context.Context, rawURL string) bool {
	target, err := url.Parse(rawURL)
	if err != nil || !target.IsAbs() {
		return false
	}

	rules, err := a.rules(ctx, target)
	if err != nil {
		return true
	}

	group := rules.FindGroup(a.userAgent)
	if group == nil {
		group = rules.FindGroup("*")
		if group == nil {
			return true
		}
	}
	return group.Test(target.Path)
}

func (a *RobotsAgent) rules(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	host := strings.ToLower(target.Host)

	a.mu.RLock()
	entry, ok := a.cache[host]
	a.mu.RUnlock()
	if ok && time.Since(entry.fetched) < a.ttl {
		return entry.rules, nil
	}

	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	rules, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.cache[host] = robotsEntry{fetched: time.Now(), rules: rules}
	a.mu.Unlock()

	return rules, nil
}
