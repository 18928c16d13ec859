// Package domain holds the core types shared by every layer: documents,
// chunks, retrieval results, chat messages, and the sentinel error set.
package domain

import (
	"time"
)

// Document is one ingested source artifact. Immutable once chunks exist,
// except for the metadata fields used purely for filtering.
type Document struct {
	ID           string
	Filename     string
	Source       string
	DocumentType string
	PracticeArea string
	Jurisdiction string
	UploadedAt   time.Time
	// Metadata captures extraction provenance (format, extractor, page count).
	Metadata map[string]string
	// ChunkCount is filled by list/get queries; zero means ingestion
	// never completed for this document.
	ChunkCount int
}

// DocumentMeta is the caller-supplied classification for an ingested artifact.
type DocumentMeta struct {
	DocumentType string
	PracticeArea string
	Jurisdiction string
	Metadata     map[string]string
}

// Filter is an AND-combined equality constraint over the denormalized
// chunk/document metadata. Empty fields constrain nothing.
type Filter struct {
	DocumentType string
	PracticeArea string
	Jurisdiction string
}

// IsEmpty reports whether the filter constrains any field.
func (f Filter) IsEmpty() bool {
	return f.DocumentType == "" && f.PracticeArea == "" && f.Jurisdiction == ""
}

// Page is skip/limit pagination for document listings.
type Page struct {
	Skip  int
	Limit int
}
