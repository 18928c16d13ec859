// Package extract converts source artifacts (plain text, PDF, DOCX) into a
// single Unicode string for chunking. Unsupported or corrupt artifacts fail
// with a domain.ExtractionError; an empty-but-valid artifact yields an empty
// string, which the caller treats as "nothing to ingest".
package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

func newError(path string, err error) error {
	return domain.NewExtractionError(path, err)
}

// Runner executes an external command and returns its stdout.
// Injectable so tests never shell out.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor dispatches on file extension to a per-format extraction routine.
type Extractor struct {
	runner Runner
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRunner overrides the command runner used for PDF extraction.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{runner: execRunner{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// plainExtensions are formats read verbatim from disk.
var plainExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".log":      true,
}

// Supported reports whether the extension (with leading dot) is handled.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	return plainExtensions[ext] || ext == ".pdf" || ext == ".docx"
}

// Supported reports whether the extension (with leading dot) is handled.
func (e *Extractor) Supported(ext string) bool {
	return Supported(ext)
}

// Extract converts the artifact at path into text.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case plainExtensions[ext]:
		return e.extractPlain(path)
	case ext == ".pdf":
		return e.extractPDF(ctx, path)
	case ext == ".docx":
		return e.extractDocx(path)
	default:
		return "", newError(path, fmt.Errorf("unsupported format %q", ext))
	}
}

func (e *Extractor) extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", newError(path, err)
	}
	return normalize(string(data)), nil
}

// extractPDF shells out to pdftotext, which writes extracted text to stdout
// when the output file is "-".
func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", newError(path, err)
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", newError(path, fmt.Errorf("pdftotext: %w", err))
	}
	return normalize(string(out)), nil
}

// normalize unifies line endings and strips surrounding whitespace.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}
