package pravnik

import "github.com/pravnik-ai/pravnik/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound           = domain.ErrNotFound
	ErrDocumentNotFound   = domain.ErrDocumentNotFound
	ErrDuplicateIngestion = domain.ErrDuplicateIngestion
	ErrVectorDimMismatch  = domain.ErrVectorDimMismatch
	ErrInvalidArgument    = domain.ErrInvalidArgument
	ErrExtraction         = domain.ErrExtraction
	ErrEmbeddingProvider  = domain.ErrEmbeddingProvider
	ErrGenerationProvider = domain.ErrGenerationProvider
)
