package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDuplicateIngestion signals chunks already exist for a document.
	// Re-ingestion requires deleting the document first.
	ErrDuplicateIngestion = errors.New("document already has chunks")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidArgument signals a caller error (bad k, bad pagination).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrChunkerConfig signals an invalid chunk size/overlap combination.
	// Raised at construction time, never per call.
	ErrChunkerConfig = errors.New("invalid chunker configuration")
	// ErrExtraction signals an unsupported or corrupt source artifact.
	ErrExtraction = errors.New("text extraction failed")
	// ErrEmbeddingProvider signals an embedding service failure.
	// A failure fails the whole batch it occurred in.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrGenerationProvider signals a generation service failure.
	// The chat service recovers it into a fallback answer.
	ErrGenerationProvider = errors.New("generation provider error")
)

// ExtractionError wraps ErrExtraction with the artifact that failed.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrExtraction.Error(), e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return ErrExtraction }

// NewExtractionError creates an extraction error for an artifact.
func NewExtractionError(path string, err error) error {
	return &ExtractionError{Path: path, Err: err}
}
