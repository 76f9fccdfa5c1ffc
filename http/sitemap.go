package http

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"

	"github.com/SirWilliamIII/wanderer"
)

// maxSitemaps bounds how many sitemap files one discovery walks, so a
// pathological sitemapindex cannot run away.
const maxSitemaps = 50

// Ensure SitemapSeeds implements wanderer.SeedSource at compile time.
var _ wanderer.SeedSource = (*SitemapSeeds)(nil)

// SitemapSeeds expands a site URL into crawl seeds from its sitemap.
// Sitemaps are located via robots.txt Sitemap directives, falling back
// to /sitemap.xml; both plain urlsets and sitemapindex files are
// handled.
type SitemapSeeds struct {
	client *http.Client
}

// NewSitemapSeeds creates a SitemapSeeds source. If client is nil,
// http.DefaultClient is used.
func NewSitemapSeeds(client *http.Client) *SitemapSeeds {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapSeeds{client: client}
}

// Discover returns the deduplicated URLs listed in the site's sitemaps.
// A site without any sitemap yields an empty slice, not an error; the
// caller falls back to crawling from the site URL itself.
func (s *SitemapSeeds) Discover(ctx context.Context, siteURL string) ([]string, error) {
	base, err := url.Parse(siteURL)
	if err != nil || !base.IsAbs() {
		return nil, wanderer.Errorf(wanderer.EINVALID, "invalid site URL %q", siteURL)
	}

	sitemapURLs := s.locateSitemaps(ctx, base)
	if len(sitemapURLs) == 0 {
		return []string{}, nil
	}

	var (
		urls    []string
		seen    = make(map[string]bool)
		visited = make(map[string]bool)
	)
	for _, sitemapURL := range sitemapURLs {
		found, err := s.walkSitemap(ctx, sitemapURL, visited)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// One broken sitemap doesn't void the others.
			continue
		}
		for _, u := range found {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

// locateSitemaps finds sitemap URLs from robots.txt, falling back to
// the conventional /sitemap.xml location.
func (s *SitemapSeeds) locateSitemaps(ctx context.Context, base *url.URL) []string {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	if sitemaps := s.sitemapsFromRobots(ctx, robotsURL.String()); len(sitemaps) > 0 {
		return sitemaps
	}

	fallback := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	if s.exists(ctx, fallback.String()) {
		return []string{fallback.String()}
	}
	return nil
}

// sitemapsFromRobots extracts Sitemap directives from robots.txt.
func (s *SitemapSeeds) sitemapsFromRobots(ctx context.Context, robotsURL string) []string {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	return sitemaps
}

// walkSitemap parses one sitemap file, recursing into sitemapindex
// entries up to the maxSitemaps bound.
func (s *SitemapSeeds) walkSitemap(ctx context.Context, sitemapURL string, visited map[string]bool) ([]string, error) {
	if visited[sitemapURL] || len(visited) >= maxSitemaps {
		return nil, nil
	}
	visited[sitemapURL] = true

	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, wanderer.Errorf(wanderer.EFETCH, "parsing sitemap %s: %v", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, wanderer.Errorf(wanderer.EFETCH, "empty sitemap %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		var urls []string
		for _, child := range root.SelectElements("sitemap") {
			loc := elementText(child, "loc")
			if loc == "" {
				continue
			}
			found, err := s.walkSitemap(ctx, loc, visited)
			if err != nil {
				continue
			}
			urls = append(urls, found...)
		}
		return urls, nil
	}

	var urls []string
	for _, child := range root.SelectElements("url") {
		if loc := elementText(child, "loc"); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

func elementText(parent *etree.Element, tag string) string {
	el := parent.SelectElement(tag)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func (s *SitemapSeeds) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, wanderer.Errorf(wanderer.EFETCH, "HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}

func (s *SitemapSeeds) exists(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
