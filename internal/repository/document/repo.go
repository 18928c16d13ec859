package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

// querier is the consumer interface over the pgx pool (ISP).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repo implements document persistence over Postgres.
type Repo struct {
	db querier
}

// New creates a document repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// Create inserts a document row. The caller assigns the ID.
func (r *Repo) Create(ctx context.Context, doc *domain.Document) error {
	meta, err := json.Marshal(metadataOrEmpty(doc.Metadata))
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO documents (id, filename, source, document_type, practice_area, jurisdiction, metadata, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, doc.ID, doc.Filename, doc.Source, doc.DocumentType, doc.PracticeArea, doc.Jurisdiction, meta, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}
	return nil
}

// Get returns a document by ID with its chunk count.
func (r *Repo) Get(ctx context.Context, id string) (domain.Document, error) {
	row := r.db.QueryRow(ctx, `
		SELECT d.id, d.filename, d.source, d.document_type, d.practice_area, d.jurisdiction,
		       d.metadata, d.uploaded_at,
		       (SELECT COUNT(*) FROM chunks c WHERE c.document_id = d.id) AS chunk_count
		FROM documents d
		WHERE d.id = $1
	`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Document{}, domain.ErrDocumentNotFound
		}
		return domain.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

// List returns documents matching the filter, newest first, with the total
// match count for pagination.
func (r *Repo) List(ctx context.Context, filter domain.Filter, page domain.Page) ([]domain.Document, int, error) {
	where, args := buildFilterClause(filter, "d", 1)

	var total int
	countQuery := "SELECT COUNT(*) FROM documents d" + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT d.id, d.filename, d.source, d.document_type, d.practice_area, d.jurisdiction,
		       d.metadata, d.uploaded_at,
		       (SELECT COUNT(*) FROM chunks c WHERE c.document_id = d.id) AS chunk_count
		FROM documents d%s
		ORDER BY d.uploaded_at DESC, d.id
		OFFSET $%d LIMIT $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, page.Skip, page.Limit)

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0, page.Limit)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return docs, total, nil
}

// Delete removes a document; chunks go with it via ON DELETE CASCADE.
// Returns false when no row matched, so repeated deletes stay idempotent.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete document %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertChunks stores all chunks of a document in one transaction. Either
// every chunk lands or none does. A document that already has chunks cannot
// be ingested again.
func (r *Repo) InsertChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM chunks WHERE document_id = $1`, documentID).Scan(&existing)
	if err != nil {
		return fmt.Errorf("check existing chunks: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("document %s already has %d chunks: %w",
			documentID, existing, domain.ErrDuplicateIngestion)
	}

	for _, chunk := range chunks {
		_, err = tx.Exec(ctx, `
			INSERT INTO chunks (document_id, chunk_index, content, embedding,
			                    filename, document_type, practice_area, jurisdiction)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, documentID, chunk.Index, chunk.Content, pgvector.NewVector(chunk.Embedding),
			chunk.Filename, chunk.DocumentType, chunk.PracticeArea, chunk.Jurisdiction)
		if err != nil {
			return fmt.Errorf("insert chunk %d of %s: %w", chunk.Index, documentID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetChunks returns the chunks of a document in chunk order, without
// embeddings.
func (r *Repo) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, chunk_index, content, created_at
		FROM chunks
		WHERE document_id = $1
		ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("get chunks %s: %w", documentID, err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get chunks %s: %w", documentID, err)
	}
	return chunks, nil
}
