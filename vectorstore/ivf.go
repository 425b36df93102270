package vectorstore

import "sort"

const (
	// defaultNList is the fixed partition count, matching the clustered
	// index configuration of the original system.
	defaultNList = 100
	// defaultNProbe is the fixed number of partitions visited per search.
	defaultNProbe = 4
)

// ivfIndex is the approximate clustered index. Vectors are partitioned by
// k-means centroids; searches visit only the NProbe nearest partitions, so
// results may miss neighbors that fell into unvisited partitions.
//
// The centroids are trained from the first batch of vectors ever added.
// This is a documented limitation, not a bug: the quality of the index
// depends entirely on how representative that first batch is of the rest
// of the data. Fields are exported for gob serialization only.
type ivfIndex struct {
	Dim       int
	NList     int
	NProbe    int
	Centroids [][]float32
	Lists     [][]int // vector ordinals per partition
	Vectors   [][]float32
}

var _ Index = (*ivfIndex)(nil)

func newIVFIndex(dim int) *ivfIndex {
	return &ivfIndex{
		Dim:    dim,
		NList:  defaultNList,
		NProbe: defaultNProbe,
	}
}

// Add inserts vectors, training the partition centroids first if the index
// has never seen data. An empty batch is a no-op and does not train.
func (ix *ivfIndex) Add(vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	if !ix.Trained() {
		ix.train(vectors)
	}
	for _, vec := range vectors {
		ordinal := len(ix.Vectors)
		ix.Vectors = append(ix.Vectors, vec)
		p := ix.nearestCentroid(vec)
		ix.Lists[p] = append(ix.Lists[p], ordinal)
	}
	return nil
}

// train builds the partition centroids from the given vectors. The
// partition count is clamped to the training-set size so small first
// batches still produce a usable index.
func (ix *ivfIndex) train(vectors [][]float32) {
	nlist := ix.NList
	if nlist > len(vectors) {
		nlist = len(vectors)
	}
	ix.Centroids = trainKMeans(vectors, nlist, kmeansMaxIterations)
	ix.Lists = make([][]int, len(ix.Centroids))
}

func (ix *ivfIndex) nearestCentroid(vec []float32) int {
	best := 0
	bestDist := squaredL2(vec, ix.Centroids[0])
	for i := 1; i < len(ix.Centroids); i++ {
		if d := squaredL2(vec, ix.Centroids[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func (ix *ivfIndex) Search(query []float32, k int) ([]int, []float32) {
	if len(ix.Vectors) == 0 {
		return nil, nil
	}

	// Rank partitions by centroid distance and visit the closest NProbe.
	parts := make([]candidate, len(ix.Centroids))
	for i, c := range ix.Centroids {
		parts[i] = candidate{ordinal: i, distance: squaredL2(query, c)}
	}
	sort.Slice(parts, func(i, j int) bool {
		if parts[i].distance != parts[j].distance {
			return parts[i].distance < parts[j].distance
		}
		return parts[i].ordinal < parts[j].ordinal
	})
	nprobe := ix.NProbe
	if nprobe > len(parts) {
		nprobe = len(parts)
	}

	var cands []candidate
	for _, p := range parts[:nprobe] {
		for _, ordinal := range ix.Lists[p.ordinal] {
			cands = append(cands, candidate{
				ordinal:  ordinal,
				distance: squaredL2(query, ix.Vectors[ordinal]),
			})
		}
	}
	return selectNearest(cands, k)
}

func (ix *ivfIndex) Count() int {
	return len(ix.Vectors)
}

func (ix *ivfIndex) Reset() {
	ix.Centroids = nil
	ix.Lists = nil
	ix.Vectors = nil
}

// Trained reports whether the centroids have been built. It is false for a
// fresh or Reset index and becomes true on the first Add.
func (ix *ivfIndex) Trained() bool {
	return len(ix.Centroids) > 0
}

func (ix *ivfIndex) Kind() IndexKind {
	return IndexKindIVF
}
