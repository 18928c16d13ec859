// Package chi exposes the REST API: document ingestion and management,
// retrieval-augmented chat, health, and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pravnik-ai/pravnik/internal/domain"
	chatuc "github.com/pravnik-ai/pravnik/internal/usecase/chat"
	healthuc "github.com/pravnik-ai/pravnik/internal/usecase/health"
)

// Error codes returned in the JSON error payload.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeDocumentNotFound   = "document_not_found"
	codeNotFound           = "not_found"
	codeDuplicateIngestion = "duplicate_ingestion"
	codeVectorDimMismatch  = "vector_dim_mismatch"
	codeExtractionFailed   = "extraction_failed"
	codeEmbeddingProvider  = "embedding_provider_error"
	codeGenerationProvider = "generation_provider_error"
	codeInternalError      = "internal_error"
)

// IngestService loads artifacts into the corpus.
type IngestService interface {
	Ingest(ctx context.Context, path string, meta domain.DocumentMeta) (domain.IngestResult, error)
	IngestDir(ctx context.Context, dir string, meta domain.DocumentMeta) (domain.IngestSummary, error)
}

// DocumentService reads and deletes ingested documents.
type DocumentService interface {
	Get(ctx context.Context, id string) (domain.Document, error)
	GetChunks(ctx context.Context, id string) ([]domain.Chunk, error)
	List(ctx context.Context, filter domain.Filter, page domain.Page) ([]domain.Document, int, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ChatService answers questions over the corpus.
type ChatService interface {
	Answer(ctx context.Context, req chatuc.Request) (chatuc.Answer, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler maps a domain error to a status and payload. Returns false
// when the error is not its kind.
type errorHandler func(err error, msg string) (int, errorResponse, bool)

// Server implements the REST API handlers.
type Server struct {
	ingest    IngestService
	documents DocumentService
	chat      ChatService
	health    HealthService
	logger    *zap.Logger

	errorHandlers []errorHandler
}

// NewServer creates a Server.
func NewServer(
	ingest IngestService,
	documents DocumentService,
	chat ChatService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:    ingest,
		documents: documents,
		chat:      chat,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		extractionHandler,
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound, ""),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound, ""),
		sentinelHandler(domain.ErrDuplicateIngestion, http.StatusConflict, codeDuplicateIngestion, ""),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeVectorDimMismatch, domain.StageEmbedding),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed, ""),
		sentinelHandler(domain.ErrChunkerConfig, http.StatusBadRequest, codeValidationFailed, domain.StageChunking),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeEmbeddingProvider, domain.StageEmbedding),
		sentinelHandler(domain.ErrGenerationProvider, http.StatusBadGateway, codeGenerationProvider, ""),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/documents", s.IngestDocument)
		r.Post("/documents/bulk", s.IngestDocumentsBulk)
		r.Get("/documents", s.ListDocuments)
		r.Get("/documents/{documentId}", s.GetDocument)
		r.Delete("/documents/{documentId}", s.DeleteDocument)
		r.Post("/chat", s.Chat)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
	// DocumentID identifies the zero-chunk document row a failed
	// ingestion left behind, so the caller can re-trigger it.
	DocumentID string `json:"document_id,omitempty"`
}

type ingestRequest struct {
	Path         string            `json:"path"`
	DocumentType string            `json:"document_type,omitempty"`
	PracticeArea string            `json:"practice_area,omitempty"`
	Jurisdiction string            `json:"jurisdiction,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type ingestResponse struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}

type bulkIngestRequest struct {
	Dir          string            `json:"dir"`
	DocumentType string            `json:"document_type,omitempty"`
	PracticeArea string            `json:"practice_area,omitempty"`
	Jurisdiction string            `json:"jurisdiction,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type fileFailureResponse struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

type bulkIngestResponse struct {
	Total       int                   `json:"total"`
	Successful  int                   `json:"successful"`
	Failed      int                   `json:"failed"`
	TotalChunks int                   `json:"total_chunks"`
	Failures    []fileFailureResponse `json:"failures,omitempty"`
}

type documentResponse struct {
	ID           string            `json:"id"`
	Filename     string            `json:"filename"`
	Source       string            `json:"source"`
	DocumentType string            `json:"document_type,omitempty"`
	PracticeArea string            `json:"practice_area,omitempty"`
	Jurisdiction string            `json:"jurisdiction,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	UploadedAt   time.Time         `json:"uploaded_at"`
	ChunkCount   int               `json:"chunk_count"`
	Chunks       []chunkResponse   `json:"chunks,omitempty"`
}

type chunkResponse struct {
	ID         int64     `json:"id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type documentListResponse struct {
	Total     int                `json:"total"`
	Documents []documentResponse `json:"documents"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

type chatRequest struct {
	Message      string               `json:"message"`
	History      []domain.ChatMessage `json:"history,omitempty"`
	K            *int                 `json:"k,omitempty"`
	Language     string               `json:"language,omitempty"`
	DocumentType string               `json:"document_type,omitempty"`
	PracticeArea string               `json:"practice_area,omitempty"`
	Jurisdiction string               `json:"jurisdiction,omitempty"`
}

type sourceResponse struct {
	Filename   string  `json:"filename"`
	Ordinal    int     `json:"ordinal"`
	Distance   float64 `json:"distance"`
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
}

type chatResponse struct {
	Answer   string           `json:"answer"`
	Sources  []sourceResponse `json:"sources"`
	Fallback bool             `json:"fallback,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// IngestDocument ingests a single artifact: POST /v1/documents.
func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Path is required")
		return
	}

	result, err := s.ingest.Ingest(r.Context(), req.Path, domain.DocumentMeta{
		DocumentType: req.DocumentType,
		PracticeArea: req.PracticeArea,
		Jurisdiction: req.Jurisdiction,
		Metadata:     req.Metadata,
	})
	if err != nil {
		s.handleIngestError(w, err, result.DocumentID)
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{
		DocumentID: result.DocumentID,
		ChunkCount: result.ChunkCount,
	})
}

// IngestDocumentsBulk ingests a directory: POST /v1/documents/bulk.
func (s *Server) IngestDocumentsBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Dir) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Dir is required")
		return
	}

	summary, err := s.ingest.IngestDir(r.Context(), req.Dir, domain.DocumentMeta{
		DocumentType: req.DocumentType,
		PracticeArea: req.PracticeArea,
		Jurisdiction: req.Jurisdiction,
		Metadata:     req.Metadata,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := bulkIngestResponse{
		Total:       summary.Total,
		Successful:  summary.Successful,
		Failed:      summary.Failed,
		TotalChunks: summary.TotalChunks,
	}
	for _, f := range summary.Failures {
		resp.Failures = append(resp.Failures, fileFailureResponse{
			Path:  f.Path,
			Stage: f.Stage,
			Error: f.Err,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListDocuments lists documents with optional filters: GET /v1/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.Filter{
		DocumentType: q.Get("document_type"),
		PracticeArea: q.Get("practice_area"),
		Jurisdiction: q.Get("jurisdiction"),
	}

	page := domain.Page{Skip: -1, Limit: -1}
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "Invalid skip parameter")
			return
		}
		page.Skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "Invalid limit parameter")
			return
		}
		page.Limit = n
	}

	docs, total, err := s.documents.List(r.Context(), filter, page)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := documentListResponse{Total: total, Documents: make([]documentResponse, 0, len(docs))}
	for i := range docs {
		resp.Documents = append(resp.Documents, documentToResponse(&docs[i], nil))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetDocument returns one document: GET /v1/documents/{documentId}.
// With include_chunks=true the stored chunk texts are attached.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "documentId")

	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var chunks []domain.Chunk
	if r.URL.Query().Get("include_chunks") == "true" {
		chunks, err = s.documents.GetChunks(r.Context(), id)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, documentToResponse(&doc, chunks))
}

// DeleteDocument removes a document and its chunks: DELETE /v1/documents/{documentId}.
// Deleting an absent document is not an error.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "documentId")

	deleted, err := s.documents.Delete(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

// Chat answers a question over the corpus: POST /v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Message is required")
		return
	}

	answer, err := s.chat.Answer(r.Context(), chatuc.Request{
		Message:  req.Message,
		History:  req.History,
		K:        req.K,
		Language: req.Language,
		Filter: domain.Filter{
			DocumentType: req.DocumentType,
			PracticeArea: req.PracticeArea,
			Jurisdiction: req.Jurisdiction,
		},
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := chatResponse{
		Answer:   answer.Answer,
		Sources:  make([]sourceResponse, 0, len(answer.Sources)),
		Fallback: answer.Fallback,
	}
	for _, src := range answer.Sources {
		resp.Sources = append(resp.Sources, sourceResponse{
			Filename:   src.Filename,
			Ordinal:    src.Ordinal,
			Distance:   src.Distance,
			DocumentID: src.DocumentID,
			ChunkIndex: src.ChunkIndex,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Healthz reports component health: GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	resp := healthResponse{
		Status: string(report.Status),
		Checks: make(map[string]string, len(report.Checks)),
	}
	for name, result := range report.Checks {
		resp.Checks[name] = string(result)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

func documentToResponse(d *domain.Document, chunks []domain.Chunk) documentResponse {
	resp := documentResponse{
		ID:           d.ID,
		Filename:     d.Filename,
		Source:       d.Source,
		DocumentType: d.DocumentType,
		PracticeArea: d.PracticeArea,
		Jurisdiction: d.Jurisdiction,
		Metadata:     d.Metadata,
		UploadedAt:   d.UploadedAt,
		ChunkCount:   d.ChunkCount,
	}
	for _, c := range chunks {
		resp.Chunks = append(resp.Chunks, chunkResponse{
			ID:         c.ID,
			ChunkIndex: c.Index,
			Content:    c.Content,
			CreatedAt:  c.CreatedAt,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
		domain.ErrDuplicateIngestion,
		domain.ErrVectorDimMismatch,
		domain.ErrInvalidArgument,
		domain.ErrChunkerConfig,
		domain.ErrExtraction,
		domain.ErrEmbeddingProvider,
		domain.ErrGenerationProvider,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code, stage string) errorHandler {
	return func(err error, msg string) (int, errorResponse, bool) {
		if !errors.Is(err, sentinel) {
			return 0, errorResponse{}, false
		}
		return status, errorResponse{Code: code, Message: msg, Stage: stage}, true
	}
}

// extractionHandler handles ErrExtraction with the failing artifact path.
func extractionHandler(err error, msg string) (int, errorResponse, bool) {
	if !errors.Is(err, domain.ErrExtraction) {
		return 0, errorResponse{}, false
	}
	var ee *domain.ExtractionError
	if errors.As(err, &ee) {
		msg = msg + ": " + ee.Path
	}
	return http.StatusUnprocessableEntity, errorResponse{
		Code:    codeExtractionFailed,
		Message: msg,
		Stage:   domain.StageExtraction,
	}, true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.handleIngestError(w, err, "")
}

// handleIngestError resolves a domain error through the handler chain. A
// non-empty documentID marks the document row a failed ingestion left
// behind and is attached to the payload.
func (s *Server) handleIngestError(w http.ResponseWriter, err error, documentID string) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if status, resp, ok := h(err, msg); ok {
			resp.DocumentID = documentID
			writeJSON(w, status, resp)
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Code:       codeInternalError,
		Message:    "internal error",
		DocumentID: documentID,
	})
}
