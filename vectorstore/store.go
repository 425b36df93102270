// Package vectorstore implements a persistent nearest-neighbor store over
// fixed-dimension embeddings. Records consist of an embedding vector, the
// raw text it was computed from, and a metadata mapping; they are
// identified by their insertion-order ordinal, which is stable and never
// reused. Searches return records by ascending squared L2 distance using
// either an exact brute-force index or an approximate clustered index,
// chosen at construction time. Every successful mutation is followed by a
// best-effort synchronous flush to disk.
package vectorstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DeletedKey is the metadata key set by Delete to mark a record as
// soft-deleted. Deleted records are not removed from the index and still
// appear in search results; callers filter on this flag themselves.
const DeletedKey = "_deleted"

// SearchResult is a single hit returned by SearchWithMetadata.
type SearchResult struct {
	Text     string         `json:"text"`
	Distance float64        `json:"distance"`
	Metadata map[string]any `json:"metadata"`
	Ordinal  int            `json:"index"`
}

// Deleted reports whether the record has been soft-deleted.
func (r SearchResult) Deleted() bool {
	v, ok := r.Metadata[DeletedKey].(bool)
	return ok && v
}

// Stats is a read-only snapshot of the store.
type Stats struct {
	TotalVectors int    `json:"total_vectors"`
	Dimension    int    `json:"embedding_dimension"`
	IndexType    string `json:"index_type"`
	Path         string `json:"path"`
}

// Store is a persistent vector store bound to a filesystem path. All
// mutations are serialized; searches may run concurrently with each other
// but not with a mutation mid-flush.
type Store struct {
	mu         sync.RWMutex
	dim        int
	path       string
	kind       IndexKind
	index      Index
	texts      []string
	metadata   []map[string]any
	embeddings [][]float32 // raw matrix, kept independently for re-indexing
	logger     *slog.Logger
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithApproximate selects the clustered approximate index instead of the
// default exact brute-force index. The approximate index trains its
// partition centroids from the first batch of vectors added; retrieval
// quality depends on how representative that batch is.
func WithApproximate() Option {
	return func(s *Store) {
		s.kind = IndexKindIVF
	}
}

// WithLogger injects a logger. Defaults to a JSON logger on stdout.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a store with the given embedding dimension, bound to path.
// Prior persisted state at path is restored if present; any restore
// failure is logged as a warning and the store starts empty instead of
// failing construction.
func New(dim int, path string, opts ...Option) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be a positive integer, got %d", dim)
	}
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}

	s := &Store{
		dim:  dim,
		path: path,
		kind: IndexKindFlat,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	s.index = newIndex(s.kind, dim)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	s.load()
	return s, nil
}

// Add appends records to the store, assigning them the next contiguous
// ordinals. vectors, texts and metadata must have equal lengths; metadata
// may be nil, in which case every record gets an empty mapping. Vectors
// are converted to float32 before storage and comparison. The call is
// all-or-nothing: on any precondition failure no mutation occurs.
// A successful Add triggers a synchronous best-effort flush.
func (s *Store) Add(vectors [][]float64, texts []string, metadata []map[string]any) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: got %d vectors for %d texts", ErrCountMismatch, len(vectors), len(texts))
	}
	if metadata != nil && len(metadata) != len(texts) {
		return fmt.Errorf("%w: got %d metadata entries for %d texts", ErrCountMismatch, len(metadata), len(texts))
	}
	for _, vec := range vectors {
		if len(vec) != s.dim {
			return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), s.dim)
		}
	}

	rows := make([][]float32, len(vectors))
	for i, vec := range vectors {
		rows[i] = toFloat32(vec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Add(rows); err != nil {
		return fmt.Errorf("failed to add vectors to index: %w", err)
	}
	s.embeddings = append(s.embeddings, rows...)
	s.texts = append(s.texts, texts...)
	for i := range texts {
		if metadata != nil && metadata[i] != nil {
			s.metadata = append(s.metadata, metadata[i])
		} else {
			s.metadata = append(s.metadata, map[string]any{})
		}
	}

	s.save()
	s.logger.Info("added vectors", "count", len(texts), "total", s.index.Count())
	return nil
}

// Search returns the texts, squared L2 distances and ordinals of up to k
// records nearest to query, nearest first. A store with zero records
// returns three empty slices, not an error. If fewer than k records
// exist, all of them are returned. In approximate mode only the nearest
// partitions are visited, so results may be approximate.
func (s *Store) Search(query []float64, k int) ([]string, []float64, []int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchLocked(query, k)
}

// searchLocked implements Search; the caller must hold at least a read lock.
func (s *Store) searchLocked(query []float64, k int) ([]string, []float64, []int, error) {
	if k < 1 {
		return nil, nil, nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, k)
	}
	if len(query) != s.dim {
		return nil, nil, nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), s.dim)
	}
	if s.index.Count() == 0 {
		return []string{}, []float64{}, []int{}, nil
	}

	ordinals, dists := s.index.Search(toFloat32(query), k)
	texts := make([]string, len(ordinals))
	distances := make([]float64, len(ordinals))
	for i, ordinal := range ordinals {
		texts[i] = s.texts[ordinal]
		distances[i] = float64(dists[i])
	}
	return texts, distances, ordinals, nil
}

// SearchWithMetadata wraps Search, zipping the metadata and ordinal into
// each hit. This is the query surface consumed by the RAG layers.
func (s *Store) SearchWithMetadata(query []float64, k int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	texts, distances, ordinals, err := s.searchLocked(query, k)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(texts))
	for i := range texts {
		results[i] = SearchResult{
			Text:     texts[i],
			Distance: distances[i],
			Metadata: s.metadata[ordinals[i]],
			Ordinal:  ordinals[i],
		}
	}
	return results, nil
}

// Delete marks the record at ordinal as soft-deleted by setting the
// DeletedKey metadata flag in place, then flushes. The record stays in
// the index and in search results. An out-of-range ordinal is silently
// ignored; this leniency is intentional.
func (s *Store) Delete(ordinal int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ordinal < 0 || ordinal >= len(s.metadata) {
		return
	}
	s.metadata[ordinal][DeletedKey] = true
	s.save()
}

// Clear resets the store to empty and immediately persists the empty
// state, overwriting any prior files at the store path.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = newIndex(s.kind, s.dim)
	s.texts = nil
	s.metadata = nil
	s.embeddings = nil
	s.save()
}

// Stats returns a snapshot of the store. TotalVectors includes records
// that have been soft-deleted.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		TotalVectors: s.index.Count(),
		Dimension:    s.dim,
		IndexType:    string(s.index.Kind()),
		Path:         s.path,
	}
}

// Count returns the current record count, including soft-deleted records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Count()
}

// Dimension returns the fixed embedding dimension of the store.
func (s *Store) Dimension() int {
	return s.dim
}

// Trained reports whether the index is ready for inserts without further
// training. It is always true in exact mode; in approximate mode it
// becomes true once the first batch of vectors has trained the centroids.
func (s *Store) Trained() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Trained()
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
