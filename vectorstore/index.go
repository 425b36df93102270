package vectorstore

import "sort"

// IndexKind identifies the nearest-neighbor index implementation.
type IndexKind string

const (
	// IndexKindFlat is the brute-force exact index.
	IndexKindFlat IndexKind = "FlatL2"
	// IndexKindIVF is the clustered approximate index.
	IndexKindIVF IndexKind = "IVFFlat"
)

// Index is the nearest-neighbor index contract shared by the exact and
// approximate implementations. Vectors are identified by their ordinal:
// the position at which they were inserted, starting at 0.
type Index interface {
	// Add appends vectors to the index in order, assigning them the next
	// contiguous ordinals. Vectors are assumed to match the index dimension.
	Add(vectors [][]float32) error
	// Search returns up to k ordinals ordered by ascending squared L2
	// distance from the query, with ties broken by lower ordinal.
	Search(query []float32, k int) (ordinals []int, distances []float32)
	// Count returns the number of vectors in the index, including ones
	// whose records have been soft-deleted.
	Count() int
	// Reset removes all vectors and any trained state.
	Reset()
	// Trained reports whether the index is ready to accept inserts without
	// further training. Exact indexes are always trained.
	Trained() bool
	// Kind returns the index kind.
	Kind() IndexKind
}

// newIndex creates an empty index of the given kind.
func newIndex(kind IndexKind, dim int) Index {
	if kind == IndexKindIVF {
		return newIVFIndex(dim)
	}
	return newFlatIndex(dim)
}

// candidate pairs an ordinal with its distance during search.
type candidate struct {
	ordinal  int
	distance float32
}

// selectNearest sorts candidates by ascending distance, breaking ties by
// lower ordinal for deterministic results, and keeps at most k of them.
func selectNearest(cands []candidate, k int) ([]int, []float32) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].distance != cands[j].distance {
			return cands[i].distance < cands[j].distance
		}
		return cands[i].ordinal < cands[j].ordinal
	})

	if k < len(cands) {
		cands = cands[:k]
	}

	ordinals := make([]int, len(cands))
	distances := make([]float32, len(cands))
	for i, c := range cands {
		ordinals[i] = c.ordinal
		distances[i] = c.distance
	}
	return ordinals, distances
}

// squaredL2 computes the squared Euclidean distance between two vectors of
// equal length.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
