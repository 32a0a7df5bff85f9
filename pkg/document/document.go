// Package document extracts plain text from uploaded files.
//
// A Loader reads a file from disk and returns its text split into sections in
// document order (pages for PDF, paragraphs for DOCX, the whole file for text).
// Registry picks the loader by file extension.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrEmptyDocument     = errors.New("document is empty")
	ErrNoText            = errors.New("document contains no extractable text")
)

// Section is one ordered chunk of extracted text.
type Section struct {
	Index   int
	Content string
}

// Loader extracts sections from the file at path.
type Loader interface {
	Load(path string) ([]Section, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) ([]Section, error)

func (f LoaderFunc) Load(path string) ([]Section, error) { return f(path) }

// Registry maps lower-case extensions (".pdf") to loaders.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry returns a registry with the built-in PDF, DOCX and plain text loaders.
func NewRegistry() *Registry {
	r := &Registry{loaders: make(map[string]Loader)}
	r.Register(".pdf", LoaderFunc(LoadPDF))
	r.Register(".docx", LoaderFunc(LoadDOCX))
	r.Register(".txt", LoaderFunc(LoadText))
	r.Register(".md", LoaderFunc(LoadText))
	return r
}

// Register adds or replaces the loader for ext.
func (r *Registry) Register(ext string, l Loader) {
	r.loaders[strings.ToLower(ext)] = l
}

// Load extracts the sections of the file at path. Zero-length files, unknown
// extensions and files without any non-blank text are errors.
func (r *Registry) Load(path string) ([]Section, error) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := r.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, ErrEmptyDocument
	}
	sections, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(Join(sections)) == "" {
		return nil, ErrNoText
	}
	return sections, nil
}

// Join concatenates section contents with a blank line, preserving order.
func Join(sections []Section) string {
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.Content
	}
	return strings.Join(parts, "\n\n")
}
