// Package schema defines the data types shared across the RAG pipeline.
package schema

import "github.com/google/uuid"

// Document is a unit of text to be chunked, embedded and indexed.
type Document struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewDocument creates a Document with a generated ID.
func NewDocument(text string) Document {
	return Document{
		ID:       uuid.New().String(),
		Text:     text,
		Metadata: make(map[string]any),
	}
}

// Chunk is a piece of a document produced by a text splitter, carrying the
// parent document's metadata plus its own position.
type Chunk struct {
	DocumentID string         `json:"document_id"`
	Seq        int            `json:"seq"`
	Text       string         `json:"text"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
