package document

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

// metadataOrEmpty keeps the JSONB column NOT NULL friendly.
func metadataOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// buildFilterClause renders the WHERE clause for a metadata filter. Filters
// combine with AND; an empty filter yields an empty clause. startIdx is the
// first positional parameter number to use.
func buildFilterClause(filter domain.Filter, alias string, startIdx int) (string, []any) {
	var conds []string
	var args []any

	add := func(column, value string) {
		if value == "" {
			return
		}
		conds = append(conds, fmt.Sprintf("%s.%s = $%d", alias, column, startIdx+len(args)))
		args = append(args, value)
	}

	add("document_type", filter.DocumentType)
	add("practice_area", filter.PracticeArea)
	add("jurisdiction", filter.Jurisdiction)

	if len(conds) == 0 {
		return "", nil
	}

	clause := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		clause += " AND " + c
	}
	return clause, args
}

// scanDocument reads one document row including metadata and chunk count.
func scanDocument(row pgx.Row) (domain.Document, error) {
	var doc domain.Document
	var meta []byte

	err := row.Scan(&doc.ID, &doc.Filename, &doc.Source, &doc.DocumentType,
		&doc.PracticeArea, &doc.Jurisdiction, &meta, &doc.UploadedAt, &doc.ChunkCount)
	if err != nil {
		return domain.Document{}, err
	}

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &doc.Metadata); err != nil {
			return domain.Document{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return doc, nil
}
