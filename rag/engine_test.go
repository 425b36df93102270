package rag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/go-ragpipe/embedding"
	"github.com/aqua777/go-ragpipe/llm"
)

// hashEmbed maps distinct texts to distinct deterministic vectors so
// nearest-neighbour behaviour is stable in tests.
func hashEmbed(dim int) func(text string) []float64 {
	return func(text string) []float64 {
		vec := make([]float64, dim)
		for i, r := range text {
			vec[i%dim] += float64(r%13) / 13
		}
		return vec
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(Config{
		OpenAIKey: "test-key",
		Dimension: 8,
		StorePath: filepath.Join(t.TempDir(), "test.index"),
		ChunkSize: 50,
	})
	require.NoError(t, err)
	e.WithEmbedding(&embedding.MockEmbeddingModel{EmbedFunc: hashEmbed(8)})
	e.WithLLM(&llm.MockLLM{Response: "mock answer"})
	return e
}

func TestIndexDocumentsAndSearch(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	count, err := e.IndexDocuments(ctx, []string{"cats purr", "dogs bark"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, e.Stats().TotalVectors)

	results, err := e.SearchSimilar(ctx, "cats purr", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cats purr", results[0].Text)
	assert.Equal(t, 0.0, results[0].Distance)
}

func TestIndexDocumentsEmptyInput(t *testing.T) {
	e := newTestEngine(t)

	count, err := e.IndexDocuments(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRetrieveContextFormatsScores(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.IndexDocuments(ctx, []string{"the sky is blue"}, nil)
	require.NoError(t, err)

	got, err := e.RetrieveContext(ctx, "the sky is blue", 1)
	require.NoError(t, err)
	// Exact match: distance 0, score 1/(1+0) = 1.00.
	assert.Equal(t, "[Score: 1.00] the sky is blue", got)
}

func TestRetrieveContextEmptyStore(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.RetrieveContext(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Equal(t, "No relevant context found.", got)
}

func TestAnswerQuestionUsesRetrievedContext(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	mock := &llm.MockLLM{Response: "the answer"}
	e.WithLLM(mock)

	_, err := e.IndexDocuments(ctx, []string{"paris is the capital of france"}, nil)
	require.NoError(t, err)

	answer, err := e.AnswerQuestion(ctx, "what is the capital of france?", 1, false)
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)

	require.NotEmpty(t, mock.Prompts)
	prompt := mock.Prompts[len(mock.Prompts)-1]
	assert.Contains(t, prompt, "paris is the capital of france")
	assert.Contains(t, prompt, "what is the capital of france?")
}

func TestAnswerQuestionRephraseUsesRewrittenQueryForRetrieval(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	e.WithLLM(&llm.MockLLM{ResponseFunc: func(prompt string) string {
		if strings.Contains(prompt, "Rephrase the following question") {
			return "rewritten query"
		}
		return "final answer"
	}})

	_, err := e.IndexDocuments(ctx, []string{"some indexed text"}, nil)
	require.NoError(t, err)

	answer, err := e.AnswerQuestion(ctx, "original question", 1, true)
	require.NoError(t, err)
	assert.Equal(t, "final answer", answer)
}

// rephraseFailingLLM errors on rephrase prompts and answers everything else.
type rephraseFailingLLM struct {
	llm.MockLLM
}

func (f *rephraseFailingLLM) Chat(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	for _, m := range messages {
		if strings.Contains(m.Content, "Rephrase the following question") {
			return "", errors.New("llm down")
		}
	}
	return f.MockLLM.Chat(ctx, messages)
}

func TestAnswerQuestionRephraseFailureFallsBack(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	e.WithLLM(&rephraseFailingLLM{MockLLM: llm.MockLLM{Response: "answer"}})

	answer, err := e.AnswerQuestion(ctx, "question", 1, true)
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)
}

func TestBatchAnswerContinuesPastFailures(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	e.WithLLM(&llm.MockLLM{ResponseFunc: func(prompt string) string {
		return "batch answer"
	}})

	results := e.BatchAnswer(ctx, []string{"q1", "q2"}, 1)
	require.Len(t, results, 2)
	assert.Equal(t, "q1", results[0].Question)
	assert.Equal(t, "batch answer", results[0].Answer)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "q2", results[1].Question)
}

func TestBatchAnswerRecordsErrors(t *testing.T) {
	e := newTestEngine(t)
	e.WithLLM(&llm.MockLLM{Err: errors.New("llm down")})

	results := e.BatchAnswer(context.Background(), []string{"q1"}, 1)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Empty(t, results[0].Answer)
}

func TestSummarizeAndRephrase(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.WithLLM(&llm.MockLLM{Response: "short version"})

	summary, err := e.Summarize(ctx, "a very long text")
	require.NoError(t, err)
	assert.Equal(t, "short version", summary)

	rephrased, err := e.RephraseQuestion(ctx, "huh?")
	require.NoError(t, err)
	assert.Equal(t, "short version", rephrased)
}

func TestExtractKeywords(t *testing.T) {
	e := newTestEngine(t)
	e.WithLLM(&llm.MockLLM{Response: "go, vectors , retrieval,"})

	keywords, err := e.ExtractKeywords(context.Background(), "text about go and vectors")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "vectors", "retrieval"}, keywords)
}

func TestIngestFileChunksAndIndexes(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("A short document about vectors."), 0o644))

	count, err := e.IngestFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := e.SearchSimilar(ctx, "A short document about vectors.", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc.txt", results[0].Metadata["file_name"])
	assert.NotEmpty(t, results[0].Metadata["document_id"])
}

func TestIngestDirectory(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("first file"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("second file"), 0o644))

	count, err := e.IngestDirectory(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, e.Stats().TotalVectors)
}

func TestClearEmptiesStore(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.IndexDocuments(ctx, []string{"something"}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, e.Stats().TotalVectors)

	e.Clear()
	assert.Zero(t, e.Stats().TotalVectors)
}
