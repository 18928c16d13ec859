package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// extractDocx reads a DOCX archive and extracts the text of word/document.xml.
func (e *Extractor) extractDocx(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", newError(path, err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", newError(path, fmt.Errorf("not a zip archive: %w", err))
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", newError(path, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", newError(path, err)
		}

		text, err := parseDocumentXML(content)
		if err != nil {
			return "", newError(path, err)
		}
		return text, nil
	}

	return "", newError(path, fmt.Errorf("word/document.xml missing"))
}

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML joins run text per paragraph, paragraphs separated by
// blank lines so the chunker sees paragraph boundaries.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	var result strings.Builder
	for _, para := range doc.Body.Paragraphs {
		var line strings.Builder
		for _, run := range para.Runs {
			for _, text := range run.Text {
				line.WriteString(text.Content)
			}
		}
		if line.Len() == 0 {
			continue
		}
		if result.Len() > 0 {
			result.WriteString("\n\n")
		}
		result.WriteString(line.String())
	}

	return strings.TrimSpace(result.String()), nil
}
