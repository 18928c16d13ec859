package search

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

// querier is the consumer interface over the pgx pool (ISP).
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repo implements nearest-neighbour retrieval over Postgres with pgvector.
type Repo struct {
	db querier
}

// New creates a search repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// SearchKNN returns the k chunks nearest to the query vector under cosine
// distance. Results are ordered by distance, then chunk index, then document
// ID, so equal distances rank deterministically. Filters combine with AND.
func (r *Repo) SearchKNN(ctx context.Context, embedding []float32, k int, filter domain.Filter) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidArgument)
	}

	query, args := buildKNNQuery(embedding, k, filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("knn query: %w", err)
	}
	defer rows.Close()

	results := make([]domain.RetrievalResult, 0, k)
	for rows.Next() {
		var res domain.RetrievalResult
		err := rows.Scan(&res.ChunkID, &res.DocumentID, &res.ChunkIndex,
			&res.Content, &res.Filename, &res.Distance)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("knn query: %w", err)
	}
	return results, nil
}

// buildKNNQuery renders the cosine distance query. The same <=> operator
// orders and scores, so ranking and reported distance always agree. Filters
// hit the metadata columns denormalized onto chunks, never the documents
// table.
func buildKNNQuery(embedding []float32, k int, filter domain.Filter) (string, []any) {
	args := []any{pgvector.NewVector(embedding)}

	where := ""
	appendCond := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		cond := fmt.Sprintf("c.%s = $%d", column, len(args))
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	appendCond("document_type", filter.DocumentType)
	appendCond("practice_area", filter.PracticeArea)
	appendCond("jurisdiction", filter.Jurisdiction)

	args = append(args, k)
	query := fmt.Sprintf(`
		SELECT c.id, c.document_id, c.chunk_index, c.content, c.filename,
		       c.embedding <=> $1 AS distance
		FROM chunks c%s
		ORDER BY c.embedding <=> $1, c.chunk_index, c.document_id
		LIMIT $%d
	`, where, len(args))

	return query, args
}
