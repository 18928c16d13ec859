package domain

import "context"

// Embedder vectorizes text via an external embedding service.
// EmbedMany returns one vector per input in the same order; a service
// failure fails the whole batch, partial results are never returned.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces an answer from an ordered message sequence.
type Generator interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// HealthChecker is implemented by clients that can verify upstream availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
