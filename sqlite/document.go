package sqlite

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/SirWilliamIII/wanderer"
)

// Compile-time interface verification.
var _ wanderer.DocumentService = (*DocumentService)(nil)

// DefaultCollectionThreshold is the document count at which a
// category/mode collection rolls over to the next shard suffix.
const DefaultCollectionThreshold = 10000

// DocumentService implements wanderer.DocumentService using SQLite.
type DocumentService struct {
	db *DB

	// collectionThreshold controls collection-hint rollover.
	collectionThreshold int
}

// Option configures a DocumentService.
type Option func(*DocumentService)

// WithCollectionThreshold overrides the rollover size.
func WithCollectionThreshold(n int) Option {
	return func(s *DocumentService) { s.collectionThreshold = n }
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB, opts ...Option) *DocumentService {
	s := &DocumentService{
		db:                  db,
		collectionThreshold: DefaultCollectionThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

// CreateDocuments writes a batch in best-effort mode: a document that fails
// validation or insertion is reported in the result without blocking the
// rest of the batch. The error return is reserved for total failures, when
// nothing could be written.
func (s *DocumentService) CreateDocuments(ctx context.Context, docs []*wanderer.Document) (*wanderer.BulkResult, error) {
	result := &wanderer.BulkResult{}

	// Collection hints are computed once per category/mode pair per batch;
	// mid-batch counts drifting past the threshold is acceptable.
	hints := make(map[string]string)

	var firstErr error
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := s.createDocument(ctx, doc, hints)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.Written++
	}

	if result.Written == 0 && result.Failed > 0 {
		return nil, wanderer.Errorf(wanderer.EPERSIST, "bulk insert wrote nothing: %v", firstErr)
	}
	return result, nil
}

func (s *DocumentService) createDocument(ctx context.Context, doc *wanderer.Document, hints map[string]string) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	doc.ID = uuid.New().String()
	if doc.Timestamp.IsZero() {
		doc.Timestamp = time.Now().UTC()
	}
	doc.ContentHash = hashContent(doc.Text)

	hintKey := string(doc.Category) + "|" + string(doc.Mode)
	hint, ok := hints[hintKey]
	if !ok {
		var err error
		hint, err = s.collectionHint(ctx, doc.Category, doc.Mode)
		if err != nil {
			return err
		}
		hints[hintKey] = hint
	}
	doc.CollectionHint = hint

	headings, err := json.Marshal(doc.Headings)
	if err != nil {
		return wanderer.Errorf(wanderer.EINVALID, "marshal headings: %v", err)
	}
	products, err := json.Marshal(doc.Products)
	if err != nil {
		return wanderer.Errorf(wanderer.EINVALID, "marshal products: %v", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, url, title, description, text, headings, link_count,
			image_count, products, mode, depth, parent_url, status,
			category, collection_hint, content_hash, error, retry_count, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.URL, doc.Title, doc.Description, doc.Text, string(headings),
		doc.LinkCount, doc.ImageCount, string(products), doc.Mode, doc.Depth,
		doc.ParentURL, doc.Status, doc.Category, doc.CollectionHint,
		doc.ContentHash, doc.Error, doc.RetryCount,
		doc.Timestamp.Format(time.RFC3339))

	if err != nil {
		return wanderer.Errorf(wanderer.EPERSIST, "insert %s: %v", doc.URL, err)
	}
	return nil
}

// collectionHint derives the logical collection name for a category/mode
// pair: "{category}_{mode}_{shard}", where the shard counter advances every
// collectionThreshold stored documents.
func (s *DocumentService) collectionHint(ctx context.Context, category wanderer.Category, mode wanderer.Mode) (string, error) {
	count, err := s.CountByCategoryAndMode(ctx, category, mode)
	if err != nil {
		return "", err
	}
	shard := count / s.collectionThreshold
	return fmt.Sprintf("%s_%s_%d", category, mode, shard), nil
}

// FindRecentSuccess reports whether a successful record of the exact URL
// exists newer than since.
func (s *DocumentService) FindRecentSuccess(ctx context.Context, url string, since time.Time) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM documents
		WHERE url = ? AND status = ? AND timestamp > ?
	`, url, wanderer.StatusSuccess, since.UTC().Format(time.RFC3339)).Scan(&n)
	if err != nil {
		return false, wanderer.Errorf(wanderer.EPERSIST, "recent success lookup: %v", err)
	}
	return n > 0, nil
}

// CountByCategoryAndMode returns the number of stored documents for a
// category/mode pair.
func (s *DocumentService) CountByCategoryAndMode(ctx context.Context, category wanderer.Category, mode wanderer.Mode) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM documents WHERE category = ? AND mode = ?
	`, category, mode).Scan(&n)
	if err != nil {
		return 0, wanderer.Errorf(wanderer.EPERSIST, "category count: %v", err)
	}
	return n, nil
}

// FindDocumentByURL retrieves the most recent document for a URL.
// Returns ENOTFOUND if no record exists.
func (s *DocumentService) FindDocumentByURL(ctx context.Context, url string) (*wanderer.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, title, description, text, headings, link_count,
			image_count, products, mode, depth, parent_url, status,
			category, collection_hint, content_hash, error, retry_count, timestamp
		FROM documents
		WHERE url = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`, url)

	var doc wanderer.Document
	var headings, products, timestamp string
	err := row.Scan(&doc.ID, &doc.URL, &doc.Title, &doc.Description, &doc.Text,
		&headings, &doc.LinkCount, &doc.ImageCount, &products, &doc.Mode,
		&doc.Depth, &doc.ParentURL, &doc.Status, &doc.Category,
		&doc.CollectionHint, &doc.ContentHash, &doc.Error, &doc.RetryCount,
		&timestamp)
	if err != nil {
		return nil, wanderer.Errorf(wanderer.ENOTFOUND, "no document for %s", url)
	}

	if err := json.Unmarshal([]byte(headings), &doc.Headings); err != nil {
		return nil, fmt.Errorf("failed to parse headings: %w", err)
	}
	if err := json.Unmarshal([]byte(products), &doc.Products); err != nil {
		return nil, fmt.Errorf("failed to parse products: %w", err)
	}
	doc.Timestamp, err = parseRFC3339(timestamp, "timestamp")
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
