package vectorstore

// flatIndex is the exact brute-force index: every search computes the
// squared L2 distance to every stored vector. Fields are exported for gob
// serialization only.
type flatIndex struct {
	Dim     int
	Vectors [][]float32
}

var _ Index = (*flatIndex)(nil)

func newFlatIndex(dim int) *flatIndex {
	return &flatIndex{Dim: dim}
}

func (f *flatIndex) Add(vectors [][]float32) error {
	f.Vectors = append(f.Vectors, vectors...)
	return nil
}

func (f *flatIndex) Search(query []float32, k int) ([]int, []float32) {
	cands := make([]candidate, len(f.Vectors))
	for i, vec := range f.Vectors {
		cands[i] = candidate{ordinal: i, distance: squaredL2(query, vec)}
	}
	return selectNearest(cands, k)
}

func (f *flatIndex) Count() int {
	return len(f.Vectors)
}

func (f *flatIndex) Reset() {
	f.Vectors = nil
}

// Trained always returns true: brute-force search needs no training phase.
func (f *flatIndex) Trained() bool {
	return true
}

func (f *flatIndex) Kind() IndexKind {
	return IndexKindFlat
}
