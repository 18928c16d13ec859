// Package postgres provides the pgx connection pool and schema migration
// for the document and chunk store.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// Config holds connection parameters for the Postgres store.
type Config struct {
	DSN        string
	MaxConns   int32
	Dimensions int
}

// Pool wraps a pgx connection pool with lifecycle helpers.
type Pool struct {
	pool       *pgxpool.Pool
	dimensions int
}

// New creates a connection pool with pgvector types registered on every
// connection.
func New(ctx context.Context, cfg Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	return &Pool{pool: pool, dimensions: cfg.Dimensions}, nil
}

// Pool exposes the underlying pgx pool for repositories.
func (p *Pool) Pool() *pgxpool.Pool {
	return p.pool
}

// Ping checks connectivity.
func (p *Pool) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the pool.
func (p *Pool) Close() {
	p.pool.Close()
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (p *Pool) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := p.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Migrate creates the schema. Statements are idempotent so startup can run
// it unconditionally.
func (p *Pool) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS documents (
			id            TEXT PRIMARY KEY,
			filename      TEXT NOT NULL,
			source        TEXT NOT NULL DEFAULT '',
			document_type TEXT NOT NULL DEFAULT '',
			practice_area TEXT NOT NULL DEFAULT '',
			jurisdiction  TEXT NOT NULL DEFAULT '',
			metadata      JSONB NOT NULL DEFAULT '{}',
			uploaded_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		// Document metadata is copied onto every chunk so vector search
		// filters without joining documents.
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id            BIGSERIAL PRIMARY KEY,
			document_id   TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			chunk_index   INT NOT NULL,
			content       TEXT NOT NULL,
			embedding     vector(%d) NOT NULL,
			filename      TEXT NOT NULL DEFAULT '',
			document_type TEXT NOT NULL DEFAULT '',
			practice_area TEXT NOT NULL DEFAULT '',
			jurisdiction  TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (document_id, chunk_index)
		)`, p.dimensions),
		`CREATE INDEX IF NOT EXISTS idx_chunks_embedding
			ON chunks USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document_type ON chunks (document_type)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_practice_area ON chunks (practice_area)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_jurisdiction ON chunks (jurisdiction)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_document_type ON documents (document_type)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_practice_area ON documents (practice_area)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_jurisdiction ON documents (jurisdiction)`,
	}

	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}
