// Package rag wires the embedding model, the LLM and the vector store
// into a retrieval-augmented question answering engine.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aqua777/go-ragpipe/embedding"
	"github.com/aqua777/go-ragpipe/llm"
	"github.com/aqua777/go-ragpipe/reader"
	"github.com/aqua777/go-ragpipe/schema"
	"github.com/aqua777/go-ragpipe/textsplitter"
	"github.com/aqua777/go-ragpipe/vectorstore"
)

const (
	// DefaultDimension is the output size requested from the embedding
	// API. The text-embedding-3 models accept a dimensions parameter, so
	// the store dimension and the embedder always agree.
	DefaultDimension = 1536
	DefaultStorePath = "vector_store/documents.index"
	DefaultTopK      = 5
)

// Config holds construction-time settings for an Engine.
type Config struct {
	// OpenAIKey falls back to the OPENAI_API_KEY environment variable.
	OpenAIKey string
	// BaseURL overrides the OpenAI API endpoint.
	BaseURL string
	// LLMModel and EmbeddingModel select the OpenAI models.
	LLMModel       string
	EmbeddingModel string

	// Dimension is the embedding dimension; defaults to DefaultDimension.
	Dimension int
	// StorePath is the index file path; defaults to DefaultStorePath.
	StorePath string
	// Approximate selects the inverted-file index over the exact one.
	Approximate bool

	// TopK is the default retrieval depth; defaults to DefaultTopK.
	TopK int
	// ChunkSize and ChunkOverlap configure ingestion chunking, in tokens.
	ChunkSize    int
	ChunkOverlap int
}

// QA pairs a question with its generated answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Err      error  `json:"-"`
}

// Engine is the RAG pipeline: it indexes documents into the vector store
// and answers questions grounded in retrieved context.
type Engine struct {
	embedder embedding.EmbeddingModel
	llm      llm.LLM
	store    *vectorstore.Store
	splitter textsplitter.TextSplitter
	reader   *reader.DirectoryReader

	topK   int
	logger *slog.Logger
}

// NewEngine creates an Engine from config, backed by OpenAI models.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	if cfg.StorePath == "" {
		cfg.StorePath = DefaultStorePath
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}

	var storeOpts []vectorstore.Option
	if cfg.Approximate {
		storeOpts = append(storeOpts, vectorstore.WithApproximate())
	}
	store, err := vectorstore.New(cfg.Dimension, cfg.StorePath, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	splitter, err := textsplitter.NewSentenceSplitter(cfg.ChunkSize, cfg.ChunkOverlap, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build text splitter: %w", err)
	}

	apiKey := cfg.OpenAIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	return &Engine{
		embedder: embedding.NewOpenAIEmbeddingWithClient(client, cfg.EmbeddingModel).WithDimensions(cfg.Dimension),
		llm:      llm.NewOpenAILLMWithClient(client, cfg.LLMModel),
		store:    store,
		splitter: splitter,
		reader:   reader.NewDirectoryReader(true),
		topK:     cfg.TopK,
		logger:   slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}, nil
}

// WithEmbedding replaces the embedding model.
func (e *Engine) WithEmbedding(model embedding.EmbeddingModel) *Engine {
	e.embedder = model
	return e
}

// WithLLM replaces the LLM.
func (e *Engine) WithLLM(model llm.LLM) *Engine {
	e.llm = model
	return e
}

// WithSplitter replaces the text splitter used during ingestion.
func (e *Engine) WithSplitter(splitter textsplitter.TextSplitter) *Engine {
	e.splitter = splitter
	return e
}

// IndexDocuments embeds documents and adds them to the store. It returns
// the number of documents indexed.
func (e *Engine) IndexDocuments(ctx context.Context, documents []string, metadata []map[string]any) (int, error) {
	if len(documents) == 0 {
		return 0, nil
	}

	embeddings, err := embedding.BatchEmbed(ctx, e.embedder, documents)
	if err != nil {
		return 0, fmt.Errorf("failed to embed documents: %w", err)
	}
	if err := e.store.Add(embeddings, documents, metadata); err != nil {
		return 0, fmt.Errorf("failed to add documents to store: %w", err)
	}

	e.logger.Info("indexed documents", "count", len(documents))
	return len(documents), nil
}

// SearchSimilar embeds the query and returns the k nearest stored entries.
func (e *Engine) SearchSimilar(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	if k <= 0 {
		k = e.topK
	}
	queryEmbedding, err := e.embedder.GetQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	results, err := e.store.SearchWithMetadata(queryEmbedding, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search store: %w", err)
	}
	return results, nil
}

// RetrieveContext retrieves the k nearest entries and formats them as a
// context block, each line scored by 1/(1+distance).
func (e *Engine) RetrieveContext(ctx context.Context, query string, k int) (string, error) {
	results, err := e.SearchSimilar(ctx, query, k)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, r := range results {
		if r.Text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[Score: %.2f] %s", 1/(1+r.Distance), r.Text))
	}
	if len(parts) == 0 {
		return noContextMessage, nil
	}
	return strings.Join(parts, "\n"), nil
}

// AnswerQuestion answers a question grounded in retrieved context. With
// rephrase set, the question is first rewritten by the LLM for retrieval;
// the answer itself is always generated against the original question.
func (e *Engine) AnswerQuestion(ctx context.Context, question string, k int, rephrase bool) (string, error) {
	searchQuery := question
	if rephrase {
		rephrased, err := e.RephraseQuestion(ctx, question)
		if err != nil {
			e.logger.Warn("rephrasing failed, using original question", "error", err)
		} else {
			searchQuery = rephrased
			e.logger.Info("rephrased question", "original", question, "rephrased", rephrased)
		}
	}

	contextBlock, err := e.RetrieveContext(ctx, searchQuery, k)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve context: %w", err)
	}

	answer, err := e.llm.Chat(ctx, []llm.ChatMessage{
		llm.SystemMessage(qaSystemPrompt),
		llm.UserMessage(fmt.Sprintf(qaUserTemplate, contextBlock, question)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return answer, nil
}

// BatchAnswer answers each question in turn. A failed question records
// its error and does not stop the batch.
func (e *Engine) BatchAnswer(ctx context.Context, questions []string, k int) []QA {
	results := make([]QA, 0, len(questions))
	for _, q := range questions {
		answer, err := e.AnswerQuestion(ctx, q, k, false)
		if err != nil {
			e.logger.Error("failed to answer question", "question", q, "error", err)
		}
		results = append(results, QA{Question: q, Answer: answer, Err: err})
	}
	return results
}

// Summarize generates a concise summary of the text.
func (e *Engine) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := e.llm.Chat(ctx, []llm.ChatMessage{
		llm.SystemMessage(summarySystemPrompt),
		llm.UserMessage(fmt.Sprintf(summaryUserTemplate, text)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	return summary, nil
}

// RephraseQuestion rewrites a question to be clearer for retrieval.
func (e *Engine) RephraseQuestion(ctx context.Context, question string) (string, error) {
	rephrased, err := e.llm.Chat(ctx, []llm.ChatMessage{
		llm.SystemMessage(rephraseSystemPrompt),
		llm.UserMessage(fmt.Sprintf(rephraseUserTemplate, question)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to rephrase question: %w", err)
	}
	return rephrased, nil
}

// ExtractKeywords asks the LLM for the main keywords of the text.
func (e *Engine) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	raw, err := e.llm.Chat(ctx, []llm.ChatMessage{
		llm.SystemMessage(keywordsSystemPrompt),
		llm.UserMessage(text),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract keywords: %w", err)
	}

	var keywords []string
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords, nil
}

// IngestFile reads a file, splits it into chunks and indexes them. It
// returns the number of chunks indexed.
func (e *Engine) IngestFile(ctx context.Context, path string) (int, error) {
	docs, err := e.reader.LoadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return e.ingestDocuments(ctx, docs)
}

// IngestDirectory reads every supported file under dir, splits the
// documents into chunks and indexes them.
func (e *Engine) IngestDirectory(ctx context.Context, dir string) (int, error) {
	docs, err := e.reader.LoadDirectory(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to load directory %s: %w", dir, err)
	}
	return e.ingestDocuments(ctx, docs)
}

func (e *Engine) ingestDocuments(ctx context.Context, docs []schema.Document) (int, error) {
	var chunks []schema.Chunk
	for _, doc := range docs {
		for seq, text := range e.splitter.SplitText(doc.Text) {
			meta := map[string]any{
				"document_id": doc.ID,
				"seq":         seq,
			}
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			chunks = append(chunks, schema.Chunk{
				DocumentID: doc.ID,
				Seq:        seq,
				Text:       text,
				Metadata:   meta,
			})
		}
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	metadata := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
		metadata[i] = c.Metadata
	}
	return e.IndexDocuments(ctx, texts, metadata)
}

// Stats reports the state of the underlying vector store.
func (e *Engine) Stats() vectorstore.Stats {
	return e.store.Stats()
}

// Clear removes everything from the vector store.
func (e *Engine) Clear() {
	e.store.Clear()
}

// Store exposes the underlying vector store.
func (e *Engine) Store() *vectorstore.Store {
	return e.store
}
