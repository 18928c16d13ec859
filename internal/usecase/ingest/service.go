// Package ingest implements document loading: extraction, chunking, batch
// embedding, and transactional chunk storage.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

// Service loads documents into the vector store.
type Service struct {
	extractor Extractor
	splitter  Splitter
	embedder  domain.Embedder
	repo      Repository
	logger    *zap.Logger
}

// New creates an ingestion service.
func New(
	extractor Extractor,
	splitter Splitter,
	embedder domain.Embedder,
	repo Repository,
	logger *zap.Logger,
) *Service {
	return &Service{
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		repo:      repo,
		logger:    logger,
	}
}

// Ingest loads a single artifact. The document row is created before
// embedding, so a provider failure leaves a queryable zero-chunk document
// behind rather than losing the upload. Chunks land in one transaction or
// not at all.
func (s *Service) Ingest(ctx context.Context, path string, meta domain.DocumentMeta) (domain.IngestResult, error) {
	text, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("extract %s: %w", path, err)
	}

	doc := &domain.Document{
		ID:           uuid.NewString(),
		Filename:     filepath.Base(path),
		Source:       path,
		DocumentType: meta.DocumentType,
		PracticeArea: meta.PracticeArea,
		Jurisdiction: meta.Jurisdiction,
		Metadata:     meta.Metadata,
		UploadedAt:   time.Now().UTC(),
	}

	contents := s.splitter.Split(text)

	if err := s.repo.Create(ctx, doc); err != nil {
		return domain.IngestResult{}, fmt.Errorf("create document: %w", err)
	}

	if len(contents) == 0 {
		s.logger.Info("Document ingested without content",
			zap.String("document_id", doc.ID),
			zap.String("filename", doc.Filename),
		)
		return domain.IngestResult{DocumentID: doc.ID, ChunkCount: 0}, nil
	}

	vecs, err := s.embedder.EmbedMany(ctx, contents)
	if err != nil {
		return domain.IngestResult{DocumentID: doc.ID}, fmt.Errorf("embed chunks: %w", err)
	}

	chunks := make([]domain.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = domain.Chunk{
			DocumentID: doc.ID,
			Index:      i,
			Content:    content,
			Embedding:  vecs[i],
			// Copied onto every chunk so search filters skip the
			// documents join.
			Filename:     doc.Filename,
			DocumentType: doc.DocumentType,
			PracticeArea: doc.PracticeArea,
			Jurisdiction: doc.Jurisdiction,
		}
	}

	if err := s.repo.InsertChunks(ctx, doc.ID, chunks); err != nil {
		return domain.IngestResult{DocumentID: doc.ID}, fmt.Errorf("store chunks: %w", err)
	}

	s.logger.Info("Document ingested",
		zap.String("document_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("chunks", len(chunks)),
	)
	return domain.IngestResult{DocumentID: doc.ID, ChunkCount: len(chunks)}, nil
}

// IngestDir loads every supported artifact under dir. One bad artifact never
// aborts the run; its failure is recorded and the walk continues.
func (s *Service) IngestDir(ctx context.Context, dir string, meta domain.DocumentMeta) (domain.IngestSummary, error) {
	paths, err := s.collectPaths(dir)
	if err != nil {
		return domain.IngestSummary{}, err
	}

	summary := domain.IngestSummary{Total: len(paths)}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("ingest dir: %w", err)
		}

		result, err := s.Ingest(ctx, path, meta)
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, domain.FileFailure{
				Path:  path,
				Stage: classifyStage(err),
				Err:   err.Error(),
			})
			s.logger.Warn("Artifact ingestion failed",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}

		summary.Successful++
		summary.TotalChunks += result.ChunkCount
	}

	s.logger.Info("Bulk ingestion finished",
		zap.String("dir", dir),
		zap.Int("total", summary.Total),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
		zap.Int("total_chunks", summary.TotalChunks),
	)
	return summary, nil
}

// collectPaths walks dir and returns supported artifacts in a stable order.
func (s *Service) collectPaths(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", dir, domain.ErrInvalidArgument)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if s.extractor.Supported(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// classifyStage maps an ingestion error to the pipeline stage that produced it.
func classifyStage(err error) string {
	switch {
	case errors.Is(err, domain.ErrExtraction):
		return domain.StageExtraction
	case errors.Is(err, domain.ErrChunkerConfig):
		return domain.StageChunking
	case errors.Is(err, domain.ErrEmbeddingProvider), errors.Is(err, domain.ErrVectorDimMismatch):
		return domain.StageEmbedding
	default:
		return domain.StageStorage
	}
}
