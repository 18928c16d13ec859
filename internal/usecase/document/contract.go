package document

import (
	"context"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Get(ctx context.Context, id string) (domain.Document, error)
	List(ctx context.Context, filter domain.Filter, page domain.Page) (docs []domain.Document, total int, err error)
	Delete(ctx context.Context, id string) (deleted bool, err error)
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}
