package vectorstore

import "math/rand"

const kmeansMaxIterations = 20

// trainKMeans clusters vectors into k centroids using Lloyd's algorithm.
// The caller guarantees k <= len(vectors) and k >= 1.
func trainKMeans(vectors [][]float32, k, maxIter int) [][]float32 {
	dim := len(vectors[0])
	n := len(vectors)

	// Seed centroids from a random permutation of the data points.
	centroids := make([][]float32, k)
	for i, p := range rand.Perm(n)[:k] {
		centroids[i] = append([]float32(nil), vectors[p]...)
	}

	assignments := make([]int, n)
	counts := make([]int, k)
	sums := make([][]float32, k)
	for i := range sums {
		sums[i] = make([]float32, dim)
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false

		for i, vec := range vectors {
			best := 0
			bestDist := squaredL2(vec, centroids[0])
			for j := 1; j < k; j++ {
				if d := squaredL2(vec, centroids[j]); d < bestDist {
					best = j
					bestDist = d
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		if !changed && iter > 0 {
			break
		}

		for j := 0; j < k; j++ {
			counts[j] = 0
			for d := 0; d < dim; d++ {
				sums[j][d] = 0
			}
		}
		for i, vec := range vectors {
			c := assignments[i]
			counts[c]++
			for d := 0; d < dim; d++ {
				sums[c][d] += vec[d]
			}
		}

		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				// Re-seed an empty cluster with a random point.
				copy(centroids[j], vectors[rand.Intn(n)])
				continue
			}
			scale := 1 / float32(counts[j])
			for d := 0; d < dim; d++ {
				centroids[j][d] = sums[j][d] * scale
			}
		}
	}

	return centroids
}
