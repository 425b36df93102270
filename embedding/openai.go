package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the embedding model used when none is configured.
const DefaultOpenAIModel = string(openai.LargeEmbedding3)

// OpenAIEmbedding generates embeddings via the OpenAI embeddings API.
type OpenAIEmbedding struct {
	client *openai.Client
	model  openai.EmbeddingModel
	dims   int
	logger *slog.Logger
}

// NewOpenAIEmbedding creates an OpenAIEmbedding. An empty apiKey falls back
// to the OPENAI_API_KEY environment variable; an empty modelName falls back
// to DefaultOpenAIModel.
func NewOpenAIEmbedding(apiKey string, modelName string) *OpenAIEmbedding {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return NewOpenAIEmbeddingWithClient(openai.NewClient(apiKey), modelName)
}

// NewOpenAIEmbeddingWithClient creates an OpenAIEmbedding with an existing
// client, for sharing a client across components.
func NewOpenAIEmbeddingWithClient(client *openai.Client, modelName string) *OpenAIEmbedding {
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	return &OpenAIEmbedding{
		client: client,
		model:  openai.EmbeddingModel(modelName),
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
}

// WithDimensions requests a specific output dimension from the API.
// Supported by the text-embedding-3 models; keeps the vectors aligned
// with a store of a different native dimension.
func (o *OpenAIEmbedding) WithDimensions(dims int) *OpenAIEmbedding {
	o.dims = dims
	return o
}

func (o *OpenAIEmbedding) GetTextEmbedding(ctx context.Context, text string) ([]float64, error) {
	vectors, err := o.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (o *OpenAIEmbedding) GetQueryEmbedding(ctx context.Context, query string) ([]float64, error) {
	return o.GetTextEmbedding(ctx, query)
}

// GetTextEmbeddingsBatch embeds all texts in a single API request.
func (o *OpenAIEmbedding) GetTextEmbeddingsBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return o.embed(ctx, texts)
}

func (o *OpenAIEmbedding) embed(ctx context.Context, input []string) ([][]float64, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      input,
		Model:      o.model,
		Dimensions: o.dims,
	})
	if err != nil {
		o.logger.Error("embedding request failed", "model", o.model, "error", err)
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(input))
	}

	vectors := make([][]float64, len(resp.Data))
	for i, item := range resp.Data {
		vec := make([]float64, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float64(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

var _ EmbeddingModelWithBatch = (*OpenAIEmbedding)(nil)
