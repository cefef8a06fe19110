package reader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is one unit of source text, e.g. a single encyclopedia article.
// Documents are consumed and discarded once their sentences are emitted.
type Document struct {
	ID    string // Opaque textual ID from the source (may be empty).
	Title string
	Text  string
}

// Source yields documents one at a time. Next returns io.EOF when the
// stream is exhausted. Sources are single-use; re-parse to restart.
type Source interface {
	Next() (*Document, error)
}

// Parser opens raw input as a document stream.
type Parser interface {
	Parse(r io.Reader, filename string) (Source, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".xml":      true,
	".wiki":     true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xml", ".wiki":
		return &WikiParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// sliceSource serves a fixed set of documents, for formats that are parsed
// in one piece rather than streamed.
type sliceSource struct {
	docs []*Document
	pos  int
}

func newSliceSource(docs []*Document) *sliceSource {
	return &sliceSource{docs: docs}
}

func (s *sliceSource) Next() (*Document, error) {
	if s.pos >= len(s.docs) {
		return nil, io.EOF
	}
	doc := s.docs[s.pos]
	s.pos++
	return doc, nil
}
