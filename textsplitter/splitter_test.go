package textsplitter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleTokenizer(t *testing.T) {
	tok := NewSimpleTokenizer()
	assert.Equal(t, []string{"hello", "world"}, tok.Encode("hello  world"))
	assert.Empty(t, tok.Encode(""))
}

func TestSentenceSplitterShortTextIsSingleChunk(t *testing.T) {
	s, err := NewSentenceSplitter(100, 10, nil)
	require.NoError(t, err)

	chunks := s.SplitText("This is a short sentence.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "This is a short sentence.", chunks[0])
}

func TestSentenceSplitterEmptyText(t *testing.T) {
	s, err := NewSentenceSplitter(100, 10, nil)
	require.NoError(t, err)

	assert.Nil(t, s.SplitText(""))
	assert.Nil(t, s.SplitText("   \n  "))
}

func TestSentenceSplitterRespectsChunkSize(t *testing.T) {
	s, err := NewSentenceSplitter(10, 0, nil)
	require.NoError(t, err)

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "Sentence number %d is here. ", i)
	}
	chunks := s.SplitText(sb.String())
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(strings.Fields(c)), 10, "chunk %q exceeds budget", c)
	}
}

func TestSentenceSplitterOverlapCarriesContext(t *testing.T) {
	s, err := NewSentenceSplitter(12, 6, nil)
	require.NoError(t, err)

	text := "First sentence has five words. Second sentence also has words. Third sentence closes things out."
	chunks := s.SplitText(text)
	require.Greater(t, len(chunks), 1)
	// The second chunk should start with a sentence already seen in the first.
	assert.Contains(t, chunks[0], strings.Fields(chunks[1])[0])
}

func TestSentenceSplitterOversizeSentenceFallsBackToWords(t *testing.T) {
	s, err := NewSentenceSplitter(5, 0, nil)
	require.NoError(t, err)

	text := "one two three four five six seven eight nine ten eleven twelve"
	chunks := s.SplitText(text)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(strings.Fields(c)), 5)
	}
	assert.Equal(t, text, strings.Join(chunks, " "))
}

func TestSentenceSplitterRejectsOverlapLargerThanChunk(t *testing.T) {
	_, err := NewSentenceSplitter(10, 10, nil)
	assert.Error(t, err)
}

func TestTokenSplitterWindows(t *testing.T) {
	s := NewTokenSplitter(4, 1, nil)

	chunks := s.SplitText("a b c d e f g h")
	require.Equal(t, []string{"a b c d", "d e f g", "g h"}, chunks)
}

func TestTokenSplitterEmptyText(t *testing.T) {
	s := NewTokenSplitter(4, 0, nil)
	assert.Nil(t, s.SplitText(""))
}

func TestTokenSplitterShortInput(t *testing.T) {
	s := NewTokenSplitter(100, 20, nil)
	chunks := s.SplitText("just a few words")
	require.Equal(t, []string{"just a few words"}, chunks)
}

func TestTikTokenTokenizerCountsTokens(t *testing.T) {
	tok, err := NewTikTokenTokenizer("")
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	tokens := tok.Encode("Hello, world!")
	assert.NotEmpty(t, tokens)
}
