// Package mock provides function-field mock implementations of the
// wanderer interfaces for testing.
package mock

import (
	"context"
	"time"

	"github.com/SirWilliamIII/wanderer"
)

var _ wanderer.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of wanderer.DocumentService.
type DocumentService struct {
	CreateDocumentsFn        func(ctx context.Context, docs []*wanderer.Document) (*wanderer.BulkResult, error)
	FindRecentSuccessFn      func(ctx context.Context, url string, since time.Time) (bool, error)
	CountByCategoryAndModeFn func(ctx context.Context, category wanderer.Category, mode wanderer.Mode) (int, error)
}

func (s *DocumentService) CreateDocuments(ctx context.Context, docs []*wanderer.Document) (*wanderer.BulkResult, error) {
	return s.CreateDocumentsFn(ctx, docs)
}

func (s *DocumentService) FindRecentSuccess(ctx context.Context, url string, since time.Time) (bool, error) {
	return s.FindRecentSuccessFn(ctx, url, since)
}

func (s *DocumentService) CountByCategoryAndMode(ctx context.Context, category wanderer.Category, mode wanderer.Mode) (int, error) {
	return s.CountByCategoryAndModeFn(ctx, category, mode)
}
