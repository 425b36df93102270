package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchEmbedFallsBackToPerTextCalls(t *testing.T) {
	model := &MockEmbeddingModel{EmbedFunc: func(text string) []float64 {
		return []float64{float64(len(text))}
	}}

	vectors, err := BatchEmbed(context.Background(), model, []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, []float64{1}, vectors[0])
	assert.Equal(t, []float64{3}, vectors[2])
}

func TestBatchEmbedPropagatesError(t *testing.T) {
	model := &MockEmbeddingModel{Err: errors.New("embedder down")}

	_, err := BatchEmbed(context.Background(), model, []string{"a"})
	assert.Error(t, err)
}

// batchSpy verifies that BatchEmbed prefers the batch interface.
type batchSpy struct {
	MockEmbeddingModel
	batchCalls int
}

func (b *batchSpy) GetTextEmbeddingsBatch(_ context.Context, texts []string) ([][]float64, error) {
	b.batchCalls++
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1}
	}
	return out, nil
}

func TestBatchEmbedUsesBatchInterface(t *testing.T) {
	spy := &batchSpy{}

	vectors, err := BatchEmbed(context.Background(), spy, []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, 1, spy.batchCalls)
}

func TestOpenAIEmbeddingRequestsConfiguredDimensions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input      []string `json:"input"`
			Model      string   `json:"model"`
			Dimensions int      `json:"dimensions"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// The store dimension must reach the API, so the returned vectors
		// always fit the store regardless of the model's native size.
		assert.Equal(t, 4, req.Dimensions)

		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": []float64{1, 2, 3, 4}},
			},
		})
	}))
	defer server.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL
	model := NewOpenAIEmbeddingWithClient(openai.NewClientWithConfig(cfg), "").WithDimensions(4)

	vec, err := model.GetTextEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
}

func TestOllamaEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello", req.Prompt)

		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.1, 0.2}})
	}))
	defer server.Close()

	model := NewOllamaEmbedding(WithOllamaEmbeddingBaseURL(server.URL))
	vec, err := model.GetTextEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, vec)
}

func TestOllamaEmbeddingServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	model := NewOllamaEmbedding(WithOllamaEmbeddingBaseURL(server.URL))
	_, err := model.GetTextEmbedding(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOllamaEmbeddingEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{}})
	}))
	defer server.Close()

	model := NewOllamaEmbedding(WithOllamaEmbeddingBaseURL(server.URL))
	_, err := model.GetTextEmbedding(context.Background(), "hello")
	assert.Error(t, err)
}
