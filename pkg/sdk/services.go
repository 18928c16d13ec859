package pravnik

import (
	"context"
	"fmt"
	"time"
)

// DocumentService reads and deletes ingested documents.
type DocumentService struct {
	svc documentUseCase
	obs *observer
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_get", start, err) }()

	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(d), nil
}

// GetChunks returns the stored chunk texts of a document in order.
func (s *DocumentService) GetChunks(ctx context.Context, id string) (_ []Chunk, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_chunks", start, err) }()

	chunks, err := s.svc.GetChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}
	out := make([]Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = fromInternalChunk(c)
	}
	return out, nil
}

// List returns a page of documents matching the filter plus the
// unpaginated total.
func (s *DocumentService) List(ctx context.Context, filter Filter, page Page) (_ ListResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_list", start, err) }()

	docs, total, err := s.svc.List(ctx, toInternalFilter(filter), toInternalPage(page))
	if err != nil {
		return ListResult{}, fmt.Errorf("list documents: %w", err)
	}
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = fromInternalDocument(docs[i])
	}
	return ListResult{Total: total, Documents: out}, nil
}

// Delete removes a document and its chunks. Returns false when the
// document did not exist; that is not an error.
func (s *DocumentService) Delete(ctx context.Context, id string) (_ bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_delete", start, err) }()

	deleted, err := s.svc.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return deleted, nil
}

// IngestService loads artifacts into the corpus.
type IngestService struct {
	svc ingestUseCase
	obs *observer
}

// File ingests a single artifact: extract, chunk, embed, store.
func (s *IngestService) File(ctx context.Context, path string, meta DocumentMeta) (_ IngestResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("ingest_file", start, err) }()

	r, err := s.svc.Ingest(ctx, path, toInternalMeta(meta))
	if err != nil {
		return IngestResult{DocumentID: r.DocumentID}, fmt.Errorf("ingest: %w", err)
	}
	return IngestResult{DocumentID: r.DocumentID, ChunkCount: r.ChunkCount}, nil
}

// Dir ingests every supported artifact under dir. One artifact's
// failure never aborts the rest of the run.
func (s *IngestService) Dir(ctx context.Context, dir string, meta DocumentMeta) (_ IngestSummary, err error) {
	start := time.Now()
	defer func() { s.obs.observe("ingest_dir", start, err) }()

	sum, err := s.svc.IngestDir(ctx, dir, toInternalMeta(meta))
	if err != nil {
		return IngestSummary{}, fmt.Errorf("ingest dir: %w", err)
	}
	out := IngestSummary{
		Total:       sum.Total,
		Successful:  sum.Successful,
		Failed:      sum.Failed,
		TotalChunks: sum.TotalChunks,
	}
	for _, f := range sum.Failures {
		out.Failures = append(out.Failures, FileFailure{Path: f.Path, Stage: f.Stage, Err: f.Err})
	}
	return out, nil
}

// ChatService answers questions over the corpus.
type ChatService struct {
	svc chatUseCase
	obs *observer
}

// Ask answers one question, retrieving supporting chunks first unless
// the request disables retrieval.
func (s *ChatService) Ask(ctx context.Context, req ChatRequest) (_ ChatAnswer, err error) {
	start := time.Now()
	defer func() { s.obs.observe("chat_ask", start, err) }()

	a, err := s.svc.Answer(ctx, toInternalChatRequest(req))
	if err != nil {
		return ChatAnswer{}, fmt.Errorf("chat: %w", err)
	}
	return fromInternalAnswer(a), nil
}
