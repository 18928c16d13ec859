package pravnik

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pravnik-ai/pravnik/internal/domain"
	chatuc "github.com/pravnik-ai/pravnik/internal/usecase/chat"
	healthuc "github.com/pravnik-ai/pravnik/internal/usecase/health"
)

// --- DocumentService ---

func TestDocumentService_Get(t *testing.T) {
	uploaded := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	mock := &mockDocumentUC{
		getFn: func(_ context.Context, id string) (domain.Document, error) {
			if id != "doc-1" {
				t.Errorf("id = %q, want doc-1", id)
			}
			return domain.Document{
				ID:           "doc-1",
				Filename:     "zmluva.docx",
				DocumentType: "contract",
				UploadedAt:   uploaded,
				ChunkCount:   3,
			}, nil
		},
	}

	svc := &DocumentService{svc: mock}
	doc, err := svc.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != "doc-1" || doc.Filename != "zmluva.docx" || doc.ChunkCount != 3 {
		t.Errorf("document = %+v", doc)
	}
	if !doc.UploadedAt.Equal(uploaded) {
		t.Errorf("UploadedAt = %v", doc.UploadedAt)
	}
}

func TestDocumentService_Get_NotFound(t *testing.T) {
	mock := &mockDocumentUC{
		getFn: func(_ context.Context, _ string) (domain.Document, error) {
			return domain.Document{}, domain.ErrDocumentNotFound
		},
	}

	svc := &DocumentService{svc: mock}
	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentService_GetChunks(t *testing.T) {
	mock := &mockDocumentUC{
		getChunksFn: func(_ context.Context, _ string) ([]domain.Chunk, error) {
			return []domain.Chunk{
				{ID: 1, Index: 0, Content: "Prvý úryvok."},
				{ID: 2, Index: 1, Content: "Druhý úryvok."},
			}, nil
		},
	}

	svc := &DocumentService{svc: mock}
	chunks, err := svc.GetChunks(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("len = %d, want 2", len(chunks))
	}
	if chunks[1].ChunkIndex != 1 || chunks[1].Content != "Druhý úryvok." {
		t.Errorf("chunk = %+v", chunks[1])
	}
}

func TestDocumentService_List(t *testing.T) {
	var gotFilter domain.Filter
	var gotPage domain.Page
	mock := &mockDocumentUC{
		listFn: func(_ context.Context, filter domain.Filter, page domain.Page) ([]domain.Document, int, error) {
			gotFilter = filter
			gotPage = page
			return []domain.Document{{ID: "doc-1"}}, 7, nil
		},
	}

	svc := &DocumentService{svc: mock}
	res, err := svc.List(context.Background(),
		Filter{DocumentType: "contract", Jurisdiction: "SK"},
		Page{Skip: 5, Limit: 10},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFilter.DocumentType != "contract" || gotFilter.Jurisdiction != "SK" {
		t.Errorf("filter = %+v", gotFilter)
	}
	if gotPage.Skip != 5 || gotPage.Limit != 10 {
		t.Errorf("page = %+v", gotPage)
	}
	if res.Total != 7 || len(res.Documents) != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestDocumentService_Delete_Idempotent(t *testing.T) {
	mock := &mockDocumentUC{
		deleteFn: func(_ context.Context, _ string) (bool, error) {
			return false, nil
		},
	}

	svc := &DocumentService{svc: mock}
	deleted, err := svc.Delete(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("expected deleted=false for absent document")
	}
}

// --- IngestService ---

func TestIngestService_File(t *testing.T) {
	mock := &mockIngestUC{
		ingestFn: func(_ context.Context, path string, meta domain.DocumentMeta) (domain.IngestResult, error) {
			if path != "/data/zmluva.docx" {
				t.Errorf("path = %q", path)
			}
			if meta.DocumentType != "contract" {
				t.Errorf("meta = %+v", meta)
			}
			return domain.IngestResult{DocumentID: "doc-1", ChunkCount: 4}, nil
		},
	}

	svc := &IngestService{svc: mock}
	res, err := svc.File(context.Background(), "/data/zmluva.docx", DocumentMeta{DocumentType: "contract"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DocumentID != "doc-1" || res.ChunkCount != 4 {
		t.Errorf("result = %+v", res)
	}
}

func TestIngestService_File_EmbeddingFailureKeepsDocumentID(t *testing.T) {
	mock := &mockIngestUC{
		ingestFn: func(_ context.Context, _ string, _ domain.DocumentMeta) (domain.IngestResult, error) {
			return domain.IngestResult{DocumentID: "doc-1"}, domain.ErrEmbeddingProvider
		},
	}

	svc := &IngestService{svc: mock}
	res, err := svc.File(context.Background(), "/data/zmluva.docx", DocumentMeta{})
	if !errors.Is(err, ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
	if res.DocumentID != "doc-1" {
		t.Errorf("DocumentID = %q, want the zero-chunk document id", res.DocumentID)
	}
}

func TestIngestService_Dir(t *testing.T) {
	mock := &mockIngestUC{
		ingestDirFn: func(_ context.Context, dir string, _ domain.DocumentMeta) (domain.IngestSummary, error) {
			if dir != "/data/zmluvy" {
				t.Errorf("dir = %q", dir)
			}
			return domain.IngestSummary{
				Total: 2, Successful: 1, Failed: 1, TotalChunks: 3,
				Failures: []domain.FileFailure{
					{Path: "/data/zmluvy/zly.pdf", Stage: domain.StageExtraction, Err: "truncated"},
				},
			}, nil
		},
	}

	svc := &IngestService{svc: mock}
	sum, err := svc.Dir(context.Background(), "/data/zmluvy", DocumentMeta{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Total != 2 || sum.Failed != 1 || sum.TotalChunks != 3 {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.Failures) != 1 || sum.Failures[0].Stage != domain.StageExtraction {
		t.Errorf("failures = %+v", sum.Failures)
	}
}

// --- ChatService ---

func TestChatService_Ask(t *testing.T) {
	var gotReq chatuc.Request
	mock := &mockChatUC{
		answerFn: func(_ context.Context, req chatuc.Request) (chatuc.Answer, error) {
			gotReq = req
			return chatuc.Answer{
				Answer: "Výpovedná lehota je dva mesiace.",
				Sources: []chatuc.Source{
					{Filename: "zmluva.docx", Ordinal: 1, DocumentID: "doc-1"},
				},
			}, nil
		},
	}

	k := 3
	svc := &ChatService{svc: mock}
	a, err := svc.Ask(context.Background(), ChatRequest{
		Message:  "Aká je výpovedná lehota?",
		History:  []Message{{Role: RoleUser, Content: "Dobrý deň."}},
		K:        &k,
		Language: "sk",
		Filter:   Filter{DocumentType: "contract"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotReq.K == nil || *gotReq.K != 3 {
		t.Errorf("K = %v", gotReq.K)
	}
	if len(gotReq.History) != 1 || gotReq.History[0].Role != domain.RoleUser {
		t.Errorf("history = %+v", gotReq.History)
	}
	if gotReq.Filter.DocumentType != "contract" {
		t.Errorf("filter = %+v", gotReq.Filter)
	}
	if a.Answer == "" || len(a.Sources) != 1 || a.Sources[0].Filename != "zmluva.docx" {
		t.Errorf("answer = %+v", a)
	}
}

func TestChatService_Ask_Error(t *testing.T) {
	mock := &mockChatUC{
		answerFn: func(_ context.Context, _ chatuc.Request) (chatuc.Answer, error) {
			return chatuc.Answer{}, domain.ErrInvalidArgument
		},
	}

	svc := &ChatService{svc: mock}
	_, err := svc.Ask(context.Background(), ChatRequest{Message: "?"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

// --- Health ---

func TestClient_Health(t *testing.T) {
	c := &Client{healthSvc: &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			"database": healthuc.CheckOK,
			"cache":    healthuc.CheckError,
		},
	}}}

	hs := c.Health(context.Background())
	if hs.Status != "degraded" {
		t.Errorf("status = %q", hs.Status)
	}
	if hs.Checks["database"] != "ok" || hs.Checks["cache"] != "error" {
		t.Errorf("checks = %+v", hs.Checks)
	}
}
