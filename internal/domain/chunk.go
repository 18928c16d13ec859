package domain

import "time"

// Chunk is one contiguous, token-bounded slice of a document's text plus its
// embedding. (document_id, index) is unique; chunks are written once in a
// single batch and never updated.
type Chunk struct {
	ID         int64
	DocumentID string
	Index      int
	Content    string
	Embedding  []float32
	// Denormalized copies of the owning document's metadata so search
	// filters never require a join.
	Filename     string
	DocumentType string
	PracticeArea string
	Jurisdiction string
	CreatedAt    time.Time
}

// RetrievalResult is one chunk plus its distance to a query vector at search
// time. Produced fresh per query, never persisted.
type RetrievalResult struct {
	ChunkID    int64
	DocumentID string
	ChunkIndex int
	Content    string
	Filename   string
	// Distance is non-negative; smaller means more relevant.
	Distance float64
}
