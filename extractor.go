package wanderer

import "context"

// Extraction is what the external fetch/render engine returns for a page.
type Extraction struct {
	Title       string
	Description string
	Text        string
	Headings    Headings
	Links       []string
	LinkCount   int
	ImageCount  int
	Products    []Product
	HTTPStatus  int
}

// Extractor is the external fetch/render engine boundary. The core does not
// specify how rendering or parsing happens; it only supplies the session
// identity and controls timeout through the context.
type Extractor interface {
	// FetchAndExtract retrieves the URL through the session's proxy and
	// cookie jar and returns the extracted content plus discovered links.
	// Network failures, timeouts, and non-2xx responses surface as EFETCH
	// errors.
	FetchAndExtract(ctx context.Context, url string, session *Session) (*Extraction, error)

	// Close releases engine resources.
	Close() error
}

// SeedSource expands a site URL into an initial target list, e.g. from a
// sitemap. Implementations hide discovery mechanics.
type SeedSource interface {
	Discover(ctx context.Context, siteURL string) ([]string, error)
}
