// Package document implements document listing, inspection, and deletion.
package document

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

// Service handles document management.
type Service struct {
	repo            Repository
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

// New creates a document service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:            repo,
		logger:          logger,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// GetChunks returns a document's chunks in chunk order. The document must
// exist even when it has no chunks.
func (s *Service) GetChunks(ctx context.Context, id string) ([]domain.Chunk, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	chunks, err := s.repo.GetChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}
	return chunks, nil
}

// List returns documents matching the filter with the total match count.
// Skip and limit are clamped to sane bounds.
func (s *Service) List(ctx context.Context, filter domain.Filter, page domain.Page) ([]domain.Document, int, error) {
	if page.Limit <= 0 {
		page.Limit = s.defaultPageSize
	}
	if page.Limit > s.maxPageSize {
		page.Limit = s.maxPageSize
	}
	if page.Skip < 0 {
		page.Skip = 0
	}

	docs, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return docs, total, nil
}

// Delete removes a document and its chunks. Deleting an absent document is
// not an error; the result reports whether anything was removed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}

	if deleted {
		s.logger.Info("Document deleted", zap.String("document_id", id))
	}
	return deleted, nil
}
