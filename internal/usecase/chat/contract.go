package chat

import (
	"context"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

// Searcher retrieves the chunks nearest to a query vector.
type Searcher interface {
	SearchKNN(ctx context.Context, embedding []float32, k int, filter domain.Filter) ([]domain.RetrievalResult, error)
}

// Request is one question to the assistant.
type Request struct {
	Message  string
	History  []domain.ChatMessage
	// K overrides the configured top-k when set. Zero means answer without
	// retrieval; negative is rejected.
	K        *int
	Language string
	Filter   domain.Filter
}

// Source identifies one retrieved chunk cited in the answer context.
type Source struct {
	Filename   string
	Ordinal    int
	Distance   float64
	DocumentID string
	ChunkIndex int
}

// Answer is the assistant's reply with its supporting sources.
type Answer struct {
	Answer   string
	Sources  []Source
	Fallback bool
}
