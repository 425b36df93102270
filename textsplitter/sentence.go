package textsplitter

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// SentenceSplitter splits text into chunks of at most ChunkSize tokens,
// preferring to break on sentence boundaries. Consecutive chunks share
// roughly ChunkOverlap tokens of trailing context.
type SentenceSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Tokenizer    Tokenizer

	sentenceTokenizer *sentences.DefaultSentenceTokenizer
}

// NewSentenceSplitter creates a SentenceSplitter. Pass 0 for chunkSize to
// use DefaultChunkSize; a nil tokenizer defaults to SimpleTokenizer.
func NewSentenceSplitter(chunkSize, chunkOverlap int, tokenizer Tokenizer) (*SentenceSplitter, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", chunkOverlap, chunkSize)
	}
	if tokenizer == nil {
		tokenizer = NewSimpleTokenizer()
	}

	st, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence tokenizer: %w", err)
	}

	return &SentenceSplitter{
		ChunkSize:         chunkSize,
		ChunkOverlap:      chunkOverlap,
		Tokenizer:         tokenizer,
		sentenceTokenizer: st,
	}, nil
}

// SplitText splits text into chunks. Empty input yields no chunks.
func (s *SentenceSplitter) SplitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if s.tokenCount(text) <= s.ChunkSize {
		return []string{text}
	}

	splits := s.sentenceSplits(text)
	return s.merge(splits)
}

// sentenceSplits breaks text into sentence-sized pieces, falling back to
// word splits for sentences that alone exceed the chunk size.
func (s *SentenceSplitter) sentenceSplits(text string) []string {
	var splits []string
	for _, sent := range s.sentenceTokenizer.Tokenize(text) {
		piece := strings.TrimSpace(sent.Text)
		if piece == "" {
			continue
		}
		if s.tokenCount(piece) <= s.ChunkSize {
			splits = append(splits, piece)
			continue
		}
		splits = append(splits, s.wordSplits(piece)...)
	}
	return splits
}

func (s *SentenceSplitter) wordSplits(text string) []string {
	words := strings.Fields(text)
	var splits []string
	var cur []string
	curTokens := 0
	for _, w := range words {
		wTokens := s.tokenCount(w)
		if curTokens+wTokens > s.ChunkSize && len(cur) > 0 {
			splits = append(splits, strings.Join(cur, " "))
			cur = cur[:0]
			curTokens = 0
		}
		cur = append(cur, w)
		curTokens += wTokens
	}
	if len(cur) > 0 {
		splits = append(splits, strings.Join(cur, " "))
	}
	return splits
}

// merge packs sentence splits into chunks up to ChunkSize tokens, carrying
// trailing splits into the next chunk as overlap.
func (s *SentenceSplitter) merge(splits []string) []string {
	var chunks []string
	var cur []string
	curTokens := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(cur, " "))

		// Carry splits from the tail of the finished chunk as overlap.
		var overlap []string
		overlapTokens := 0
		for i := len(cur) - 1; i >= 0; i-- {
			t := s.tokenCount(cur[i])
			if overlapTokens+t > s.ChunkOverlap {
				break
			}
			overlap = append([]string{cur[i]}, overlap...)
			overlapTokens += t
		}
		cur = overlap
		curTokens = overlapTokens
	}

	for _, split := range splits {
		t := s.tokenCount(split)
		if curTokens+t > s.ChunkSize && len(cur) > 0 {
			flush()
		}
		cur = append(cur, split)
		curTokens += t
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}

func (s *SentenceSplitter) tokenCount(text string) int {
	return len(s.Tokenizer.Encode(text))
}

var _ TextSplitter = (*SentenceSplitter)(nil)
