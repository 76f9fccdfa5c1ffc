// Package trafilatura extracts the main textual content from HTML,
// discarding boilerplate like navigation and footers.
package trafilatura

import (
	"strings"

	"github.com/markusmobius/go-trafilatura"
)

// TextExtractor wraps go-trafilatura to pull a page's main text.
type TextExtractor struct{}

// NewTextExtractor creates a new TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Text returns the main content of rawHTML as plain text. Extraction
// failures return an empty string: a page without extractable prose is
// still a valid crawl result.
func (e *TextExtractor) Text(rawHTML string) string {
	if rawHTML == "" {
		return ""
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil || result == nil {
		return ""
	}
	return strings.TrimSpace(result.ContentText)
}
