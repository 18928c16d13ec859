package domain

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

// IngestSummary aggregates a bulk ingestion run. One artifact's failure
// never aborts the rest of the run.
type IngestSummary struct {
	Total       int
	Successful  int
	Failed      int
	TotalChunks int
	Failures    []FileFailure
}

// Ingestion pipeline stages reported in error payloads and summaries.
const (
	StageExtraction = "extraction"
	StageChunking   = "chunking"
	StageEmbedding  = "embedding"
	StageStorage    = "storage"
)
