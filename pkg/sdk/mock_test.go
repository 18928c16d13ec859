package pravnik

import (
	"context"

	"github.com/pravnik-ai/pravnik/internal/domain"
	chatuc "github.com/pravnik-ai/pravnik/internal/usecase/chat"
	healthuc "github.com/pravnik-ai/pravnik/internal/usecase/health"
)

// --- documentUseCase mock ---

type mockDocumentUC struct {
	getFn       func(ctx context.Context, id string) (domain.Document, error)
	getChunksFn func(ctx context.Context, id string) ([]domain.Chunk, error)
	listFn      func(ctx context.Context, filter domain.Filter, page domain.Page) ([]domain.Document, int, error)
	deleteFn    func(ctx context.Context, id string) (bool, error)
}

func (m *mockDocumentUC) Get(ctx context.Context, id string) (domain.Document, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocumentUC) GetChunks(ctx context.Context, id string) ([]domain.Chunk, error) {
	return m.getChunksFn(ctx, id)
}

func (m *mockDocumentUC) List(
	ctx context.Context, filter domain.Filter, page domain.Page,
) ([]domain.Document, int, error) {
	return m.listFn(ctx, filter, page)
}

func (m *mockDocumentUC) Delete(ctx context.Context, id string) (bool, error) {
	return m.deleteFn(ctx, id)
}

// --- ingestUseCase mock ---

type mockIngestUC struct {
	ingestFn    func(ctx context.Context, path string, meta domain.DocumentMeta) (domain.IngestResult, error)
	ingestDirFn func(ctx context.Context, dir string, meta domain.DocumentMeta) (domain.IngestSummary, error)
}

func (m *mockIngestUC) Ingest(
	ctx context.Context, path string, meta domain.DocumentMeta,
) (domain.IngestResult, error) {
	return m.ingestFn(ctx, path, meta)
}

func (m *mockIngestUC) IngestDir(
	ctx context.Context, dir string, meta domain.DocumentMeta,
) (domain.IngestSummary, error) {
	return m.ingestDirFn(ctx, dir, meta)
}

// --- chatUseCase mock ---

type mockChatUC struct {
	answerFn func(ctx context.Context, req chatuc.Request) (chatuc.Answer, error)
}

func (m *mockChatUC) Answer(ctx context.Context, req chatuc.Request) (chatuc.Answer, error) {
	return m.answerFn(ctx, req)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}
