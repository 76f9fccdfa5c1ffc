// Package classify assigns topic categories to crawled documents.
// Classification evaluates an ordered rule table top-to-bottom and returns
// the first match, falling back to the general category. The table is data,
// not inline conditionals, so rule priority stays auditable.
package classify

import (
	"strings"

	"github.com/SirWilliamIII/wanderer"
)

// Compile-time interface verification.
var _ wanderer.Classifier = (*Classifier)(nil)

// Rule matches a document when any of its URL substrings appears in the
// document URL, or any of its keywords appears in the document's textual
// content. Matching is case-insensitive.
type Rule struct {
	Category wanderer.Category
	URLParts []string
	Keywords []string
}

// Classifier is a pure, deterministic document classifier.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier evaluating rules in the given order.
// Order is a policy decision: reordering rules silently changes outcomes.
func New(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// NewDefault creates a Classifier with the default rule table.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// Classify returns the first matching category in rule order, or
// CategoryGeneral if no rule matches. It is total: a nil or empty document
// classifies as general rather than failing the pipeline.
func (c *Classifier) Classify(doc *wanderer.Document) wanderer.Category {
	if doc == nil {
		return wanderer.CategoryGeneral
	}

	url := strings.ToLower(doc.URL)
	content := contentBlob(doc)

	for _, rule := range c.rules {
		if rule.matches(url, content) {
			return rule.Category
		}
	}
	return wanderer.CategoryGeneral
}

// Categories returns the closed category set in priority order, ending with
// the general fallback.
func (c *Classifier) Categories() []wanderer.Category {
	cats := make([]wanderer.Category, 0, len(c.rules)+1)
	for _, rule := range c.rules {
		cats = append(cats, rule.Category)
	}
	return append(cats, wanderer.CategoryGeneral)
}

func (r Rule) matches(url, content string) bool {
	for _, part := range r.URLParts {
		if strings.Contains(url, part) {
			return true
		}
	}
	for _, kw := range r.Keywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

// contentBlob lowercases and joins the fields keyword rules inspect.
func contentBlob(doc *wanderer.Document) string {
	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteByte(' ')
	b.WriteString(doc.Description)
	b.WriteByte(' ')
	for _, h := range doc.Headings.H1 {
		b.WriteString(h)
		b.WriteByte(' ')
	}
	for _, h := range doc.Headings.H2 {
		b.WriteString(h)
		b.WriteByte(' ')
	}
	b.WriteString(doc.Text)
	return strings.ToLower(b.String())
}
