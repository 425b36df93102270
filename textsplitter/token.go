package textsplitter

import "strings"

// TokenSplitter splits text into fixed-size token windows with overlap,
// ignoring sentence structure. Useful for logs and other non-prose input.
type TokenSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Tokenizer    Tokenizer
}

// NewTokenSplitter creates a TokenSplitter. Pass 0 for chunkSize to use
// DefaultChunkSize; a nil tokenizer defaults to SimpleTokenizer.
func NewTokenSplitter(chunkSize, chunkOverlap int, tokenizer Tokenizer) *TokenSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	if tokenizer == nil {
		tokenizer = NewSimpleTokenizer()
	}
	return &TokenSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Tokenizer:    tokenizer,
	}
}

// SplitText splits text on whitespace into windows of at most ChunkSize
// tokens, stepping by ChunkSize-ChunkOverlap words per window.
func (s *TokenSplitter) SplitText(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	step := s.ChunkSize - s.ChunkOverlap
	for start := 0; start < len(words); start += step {
		end := start + s.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

var _ TextSplitter = (*TokenSplitter)(nil)
