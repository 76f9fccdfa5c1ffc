// Package goquery extracts page structure from raw HTML: title, meta
// description, headings, outbound links, image counts, and product tiles.
// Main-text extraction lives in the trafilatura package; this one only
// reads the DOM.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SirWilliamIII/wanderer"
)

// productSelectors are common e-commerce product tile patterns, tried in
// order until one matches.
var productSelectors = []string{
	".product", ".product-card", ".product-item", "[data-product]", "li.item.product",
}

// Extractor parses HTML into the structural fields of an Extraction.
type Extractor struct {
	// LinkSelector is the CSS selector for outbound links.
	// Defaults to "a[href]".
	LinkSelector string
}

// NewExtractor creates an Extractor using the given link selector.
func NewExtractor(linkSelector string) *Extractor {
	if linkSelector == "" {
		linkSelector = "a[href]"
	}
	return &Extractor{LinkSelector: linkSelector}
}

// Extract parses rawHTML and fills everything except the main text.
// Relative links are resolved against baseURL; non-HTTP schemes
// (javascript:, mailto:) are dropped.
func (e *Extractor) Extract(rawHTML string, baseURL string) (*wanderer.Extraction, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, wanderer.Errorf(wanderer.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, wanderer.Errorf(wanderer.EINVALID, "failed to parse HTML: %v", err)
	}

	ext := &wanderer.Extraction{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		ext.Description = strings.TrimSpace(desc)
	}

	ext.Headings = wanderer.Headings{
		H1: headingText(doc, "h1"),
		H2: headingText(doc, "h2"),
		H3: headingText(doc, "h3"),
	}

	seen := make(map[string]bool)
	doc.Find(e.LinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || isNonHTTPLink(href) {
			return
		}
		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		ext.Links = append(ext.Links, resolved)
	})
	ext.LinkCount = len(ext.Links)
	ext.ImageCount = doc.Find("img").Length()
	ext.Products = extractProducts(doc)

	return ext, nil
}

func headingText(doc *goquery.Document, tag string) []string {
	var out []string
	doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

func extractProducts(doc *goquery.Document) []wanderer.Product {
	var products []wanderer.Product
	for _, selector := range productSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			p := wanderer.Product{
				Name:        firstText(sel, ".product-name, .product-title, h2, h3, .name"),
				Price:       firstText(sel, ".price, .product-price, [data-price]"),
				Description: firstText(sel, ".product-description, .description, p"),
			}
			if p.Name != "" || p.Price != "" {
				products = append(products, p)
			}
		})
		if len(products) > 0 {
			break
		}
	}
	return products
}

func firstText(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).First().Text())
}

// isNonHTTPLink reports whether the href uses a scheme that can't be crawled.
func isNonHTTPLink(href string) bool {
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:", "#"} {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}

// resolveURL resolves href against base, returning "" for unparseable URLs.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
