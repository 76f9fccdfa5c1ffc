package wanderer

import (
	"context"
	"time"
)

// Category is a topic label from the classifier's closed set.
type Category string

// CategoryGeneral is the fallback category when no classification rule
// matches. Classification is total: every document receives a category.
const CategoryGeneral Category = "general"

// DocumentStatus marks a document's terminal outcome.
type DocumentStatus string

// Terminal document outcomes.
const (
	StatusSuccess DocumentStatus = "success"
	StatusFailed  DocumentStatus = "failed"
)

// Headings holds the page's heading text by level.
type Headings struct {
	H1 []string `json:"h1"`
	H2 []string `json:"h2"`
	H3 []string `json:"h3"`
}

// Product is a product tile extracted from an e-commerce style page.
type Product struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// Document is the terminal record for a crawl request, produced on success
// or on retry exhaustion. It is immutable once created; ownership passes to
// the persistence batcher, which holds it until flushed.
type Document struct {
	ID             string         `json:"id"`
	URL            string         `json:"url"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Text           string         `json:"text"`
	Headings       Headings       `json:"headings"`
	LinkCount      int            `json:"linkCount"`
	ImageCount     int            `json:"imageCount"`
	Products       []Product      `json:"products"`
	Mode           Mode           `json:"mode"`
	Depth          int            `json:"depth"`
	ParentURL      string         `json:"parentUrl"`
	Status         DocumentStatus `json:"status"`
	Category       Category       `json:"category"`
	CollectionHint string         `json:"collectionHint"`
	ContentHash    string         `json:"contentHash"`
	Error          string         `json:"error,omitempty"`
	RetryCount     int            `json:"retryCount"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	if d.Mode == "" {
		return Errorf(EINVALID, "document mode required")
	}
	if d.Status != StatusSuccess && d.Status != StatusFailed {
		return Errorf(EINVALID, "document status must be success or failed")
	}
	return nil
}

// BulkResult reports the per-item outcome of a best-effort bulk write.
type BulkResult struct {
	Written int
	Failed  int

	// Errors holds one entry per failed document, in input order.
	Errors []error
}

// DocumentService persists terminal crawl records.
type DocumentService interface {
	// CreateDocuments writes a batch in best-effort mode: one bad document
	// does not prevent the rest of the batch from being written. The error
	// return is reserved for total failures (e.g. the datastore is down).
	CreateDocuments(ctx context.Context, docs []*Document) (*BulkResult, error)

	// FindRecentSuccess reports whether a successful record of the exact
	// URL exists newer than since.
	FindRecentSuccess(ctx context.Context, url string, since time.Time) (bool, error)

	// CountByCategoryAndMode returns the number of stored documents for a
	// category/mode pair. Used for collection rollover decisions.
	CountByCategoryAndMode(ctx context.Context, category Category, mode Mode) (int, error)
}

// Classifier maps a document to one category from a fixed closed set.
// Implementations must be pure and total: identical content always yields
// the same category, and unmatched documents fall back to CategoryGeneral.
type Classifier interface {
	Classify(doc *Document) Category
}

// DocumentBatcher accumulates classified documents and flushes them to the
// datastore in size- or time-triggered batches. Enqueue never blocks the
// caller on storage. A handed-off document is only lost if the process
// terminates with it still unflushed.
type DocumentBatcher interface {
	// Enqueue buffers a document for an eventual flush.
	Enqueue(doc *Document)

	// Flush writes everything currently buffered.
	Flush(ctx context.Context) error

	// Close stops the batcher's timer and performs a final flush.
	// Must be called on shutdown to avoid silent data loss.
	Close(ctx context.Context) error
}

// DedupGate decides whether a URL was already successfully scraped within
// the freshness window. The check is advisory, not transactional: two
// discovery paths may still dispatch the same URL concurrently, and
// downstream persistence must tolerate that.
type DedupGate interface {
	RecentlyScraped(ctx context.Context, url string) (bool, error)
}
