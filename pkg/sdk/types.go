package pravnik

import (
	"time"

	"github.com/pravnik-ai/pravnik/internal/domain"
	chatuc "github.com/pravnik-ai/pravnik/internal/usecase/chat"
)

// DocumentMeta is the caller-supplied classification for an ingested artifact.
type DocumentMeta struct {
	DocumentType string
	PracticeArea string
	Jurisdiction string
	Metadata     map[string]string
}

// Filter is an AND-combined equality constraint over document metadata.
// Empty fields constrain nothing.
type Filter struct {
	DocumentType string
	PracticeArea string
	Jurisdiction string
}

// Page is skip/limit pagination for document listings.
type Page struct {
	Skip  int
	Limit int
}

// Document is one ingested source artifact.
type Document struct {
	ID           string
	Filename     string
	Source       string
	DocumentType string
	PracticeArea string
	Jurisdiction string
	Metadata     map[string]string
	UploadedAt   time.Time
	ChunkCount   int
}

// Chunk is one stored slice of a document's text.
type Chunk struct {
	ID         int64
	ChunkIndex int
	Content    string
	CreatedAt  time.Time
}

// ListResult is a page of documents plus the unpaginated total.
type ListResult struct {
	Total     int
	Documents []Document
}

// IngestResult is the outcome of ingesting a single artifact.
type IngestResult struct {
	DocumentID string
	ChunkCount int
}

// FileFailure records one failed artifact in a bulk ingestion.
type FileFailure struct {
	Path  string
	Stage string
	Err   string
}

// IngestSummary aggregates a bulk ingestion run.
type IngestSummary struct {
	Total       int
	Successful  int
	Failed      int
	TotalChunks int
	Failures    []FileFailure
}

// Message is one turn of conversation history.
type Message struct {
	Role    string
	Content string
}

// Message roles.
const (
	RoleUser      = domain.RoleUser
	RoleAssistant = domain.RoleAssistant
)

// ChatRequest is one question to the assistant.
type ChatRequest struct {
	Message  string
	History  []Message
	// K overrides the configured top-k when set. Zero means answer without
	// retrieval; negative is rejected.
	K        *int
	Language string
	Filter   Filter
}

// Source identifies one retrieved chunk cited in the answer context.
type Source struct {
	Filename   string
	Ordinal    int
	Distance   float64
	DocumentID string
	ChunkIndex int
}

// ChatAnswer is the assistant's reply with its supporting sources.
// Fallback is set when the generation provider failed and a static
// apology was returned instead.
type ChatAnswer struct {
	Answer   string
	Sources  []Source
	Fallback bool
}

func toInternalMeta(m DocumentMeta) domain.DocumentMeta {
	return domain.DocumentMeta{
		DocumentType: m.DocumentType,
		PracticeArea: m.PracticeArea,
		Jurisdiction: m.Jurisdiction,
		Metadata:     m.Metadata,
	}
}

func toInternalPage(p Page) domain.Page {
	return domain.Page{Skip: p.Skip, Limit: p.Limit}
}

func toInternalFilter(f Filter) domain.Filter {
	return domain.Filter{
		DocumentType: f.DocumentType,
		PracticeArea: f.PracticeArea,
		Jurisdiction: f.Jurisdiction,
	}
}

func fromInternalDocument(d domain.Document) Document {
	return Document{
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
}

func fromInternalChunk(c domain.Chunk) Chunk {
	return Chunk{
		ID:         c.ID,
		ChunkIndex: c.Index,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
}

func toInternalChatRequest(r ChatRequest) chatuc.Request {
	history := make([]domain.ChatMessage, len(r.History))
	for i, m := range r.History {
		history[i] = domain.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return chatuc.Request{
		Message:  r.Message,
		History:  history,
		K:        r.K,
		Language: r.Language,
		Filter:   toInternalFilter(r.Filter),
	}
}

func fromInternalAnswer(a chatuc.Answer) ChatAnswer {
	sources := make([]Source, len(a.Sources))
	for i, s := range a.Sources {
		sources[i] = Source{
			Filename:   s.Filename,
			Ordinal:    s.Ordinal,
			Distance:   s.Distance,
			DocumentID: s.DocumentID,
			ChunkIndex: s.ChunkIndex,
		}
	}
	return ChatAnswer{Answer: a.Answer, Sources: sources, Fallback: a.Fallback}
}
