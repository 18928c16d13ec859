package ingest

import (
	"context"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

// Extractor converts a source artifact into text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
	Supported(ext string) bool
}

// Splitter divides text into retrieval-sized chunks.
type Splitter interface {
	Split(text string) []string
}

// Repository defines the storage contract for ingestion.
type Repository interface {
	Create(ctx context.Context, doc *domain.Document) error
	InsertChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error
}
