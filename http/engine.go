// Package http implements the fetch side of a crawl: per-session HTTP
// clients that route through the session's proxy and cookie jar and
// present its browser fingerprint, plus robots.txt politeness and
// sitemap seed discovery.
package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html/charset"

	"github.com/SirWilliamIII/wanderer"
)

// DefaultMaxBodySize caps how much of a response body is read. Pages
// larger than this are truncated, not rejected.
const DefaultMaxBodySize = 10 << 20 // 10 MiB

// StructureExtractor parses raw HTML into an Extraction's structural
// fields. The goquery package provides the production implementation.
type StructureExtractor interface {
	Extract(rawHTML string, baseURL string) (*wanderer.Extraction, error)
}

// TextExtractor pulls a page's main text. The trafilatura package
// provides the production implementation.
type TextExtractor interface {
	Text(rawHTML string) string
}

// Ensure Engine implements wanderer.Extractor at compile time.
var _ wanderer.Extractor = (*Engine)(nil)

// Engine fetches pages over plain HTTP and delegates parsing to the
// injected extractors. It maintains one http.Client per session so that
// cookies and proxy routing stay bound to the session's identity.
type Engine struct {
	structure   StructureExtractor
	text        TextExtractor
	maxBodySize int64

	mu      sync.Mutex
	clients map[string]*http.Client
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxBodySize caps response body reads at n bytes.
func WithMaxBodySize(n int64) EngineOption {
	return func(e *Engine) {
		e.maxBodySize = n
	}
}

// NewEngine creates an Engine. structure is required; text may be nil,
// in which case extracted documents carry no main text.
func NewEngine(structure StructureExtractor, text TextExtractor, opts ...EngineOption) *Engine {
	e := &Engine{
		structure:   structure,
		text:        text,
		maxBodySize: DefaultMaxBodySize,
		clients:     make(map[string]*http.Client),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FetchAndExtract retrieves the URL through the session's proxy and
// cookie jar, presenting its fingerprint headers, and returns the
// parsed content. The caller controls the timeout via ctx.
func (e *Engine) FetchAndExtract(ctx context.Context, rawURL string, session *wanderer.Session) (*wanderer.Extraction, error) {
	client, err := e.clientFor(session)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, wanderer.Errorf(wanderer.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	applyFingerprint(req, session)

	resp, err := client.Do(req)
	if err != nil {
		return nil, wanderer.Errorf(wanderer.EFETCH, "fetch %s: %v", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, wanderer.Errorf(wanderer.EFETCH, "HTTP %d for %s", resp.StatusCode, rawURL)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		return nil, wanderer.Errorf(wanderer.EFETCH, "unsupported content type %q for %s", ct, rawURL)
	}

	// Decode legacy charsets to UTF-8 before parsing.
	reader, err := charset.NewReader(io.LimitReader(resp.Body, e.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, wanderer.Errorf(wanderer.EFETCH, "decode %s: %v", rawURL, err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, wanderer.Errorf(wanderer.EFETCH, "read %s: %v", rawURL, err)
	}

	// Resolve links against the final URL so redirects don't skew
	// relative references.
	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	ext, err := e.structure.Extract(string(body), finalURL)
	if err != nil {
		return nil, err
	}
	if e.text != nil {
		ext.Text = e.text.Text(string(body))
	}
	ext.HTTPStatus = resp.StatusCode

	return ext, nil
}

// Close drops all per-session clients and their idle connections.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, client := range e.clients {
		client.CloseIdleConnections()
	}
	e.clients = make(map[string]*http.Client)
	return nil
}

// clientFor returns the session's dedicated client, building it on
// first use. Clients carry no Timeout; the caller's context bounds each
// request instead.
func (e *Engine) clientFor(session *wanderer.Session) (*http.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if client, ok := e.clients[session.ID]; ok {
		return client, nil
	}

	transport := &http.Transport{}
	if session.Proxy.URL != "" {
		proxyURL, err := url.Parse(session.Proxy.URL)
		if err != nil {
			return nil, wanderer.Errorf(wanderer.ECONFIG, "invalid proxy URL %q: %v", session.Proxy.URL, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Jar:       session.Jar,
	}
	e.clients[session.ID] = client
	return client, nil
}

func applyFingerprint(req *http.Request, session *wanderer.Session) {
	fp := session.Fingerprint
	if fp.UserAgent != "" {
		req.Header.Set("User-Agent", fp.UserAgent)
	}
	if fp.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", fp.AcceptLanguage)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}
