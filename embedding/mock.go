package embedding

import "context"

// MockEmbeddingModel is a mock implementation of the EmbeddingModel
// interface. If EmbedFunc is set it is used to derive an embedding from
// the input text; otherwise the fixed Embedding is returned.
type MockEmbeddingModel struct {
	Embedding []float64
	EmbedFunc func(text string) []float64
	Err       error
}

func (m *MockEmbeddingModel) GetTextEmbedding(ctx context.Context, text string) ([]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.EmbedFunc != nil {
		return m.EmbedFunc(text), nil
	}
	return m.Embedding, nil
}

func (m *MockEmbeddingModel) GetQueryEmbedding(ctx context.Context, query string) ([]float64, error) {
	return m.GetTextEmbedding(ctx, query)
}
