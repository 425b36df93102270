// Package reader loads files from disk into documents ready for indexing.
package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqua777/go-ragpipe/schema"
)

// Reader loads a single file into one or more documents.
type Reader interface {
	LoadFile(path string) ([]schema.Document, error)
}

// TextReader reads plain-text files (.txt, .md) as one document each.
type TextReader struct{}

func NewTextReader() *TextReader {
	return &TextReader{}
}

func (r *TextReader) LoadFile(path string) ([]schema.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}

	doc := schema.NewDocument(text)
	doc.Metadata["source"] = path
	doc.Metadata["file_name"] = filepath.Base(path)
	return []schema.Document{doc}, nil
}

var _ Reader = (*TextReader)(nil)
