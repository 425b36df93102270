// Package textsplitter chunks documents into pieces small enough to embed.
package textsplitter

// TextSplitter splits text into chunks.
type TextSplitter interface {
	SplitText(text string) []string
}

// Tokenizer encodes text into a list of string tokens. Splitters only use
// the token count, so the token values themselves need not be decodable.
type Tokenizer interface {
	Encode(text string) []string
}

const (
	DefaultChunkSize    = 1024
	DefaultChunkOverlap = 200
)
