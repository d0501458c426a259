package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// KMeans is Lloyd's algorithm with k-means++ seeding. The random source is
// seeded explicitly so a fixed Seed yields identical labels run to run.
type KMeans struct {
	K       int
	MaxIter int
	Seed    int64
}

// Fit assigns each row to one of K clusters.
func (k *KMeans) Fit(m *mat.Dense) ([]int, error) {
	rows, cols := m.Dims()
	if k.K <= 0 {
		return nil, fmt.Errorf("cluster: kmeans: K must be positive, got %d", k.K)
	}
	if k.K > rows {
		return nil, fmt.Errorf("cluster: kmeans: K=%d exceeds %d rows", k.K, rows)
	}
	maxIter := k.MaxIter
	if maxIter == 0 {
		maxIter = 300
	}

	rng := rand.New(rand.NewSource(k.Seed))
	centroids := seedPlusPlus(m, k.K, rng)

	labels := make([]int, rows)
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i := 0; i < rows; i++ {
			best, bestDist := 0, math.Inf(1)
			for c := range centroids {
				if d := sqDistTo(m, i, centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		counts := make([]int, k.K)
		next := make([][]float64, k.K)
		for c := range next {
			next[c] = make([]float64, cols)
		}
		for i := 0; i < rows; i++ {
			counts[labels[i]]++
			for j := 0; j < cols; j++ {
				next[labels[i]][j] += m.At(i, j)
			}
		}
		for c := range next {
			if counts[c] == 0 {
				// Empty cluster: reseed from the point farthest from its centroid.
				far := farthestPoint(m, centroids, labels)
				mat.Row(next[c], far, m)
				continue
			}
			for j := 0; j < cols; j++ {
				next[c][j] /= float64(counts[c])
			}
		}
		centroids = next
	}
	return labels, nil
}

// seedPlusPlus picks initial centroids with the k-means++ scheme: each new
// centroid is drawn with probability proportional to its squared distance
// from the nearest centroid chosen so far.
func seedPlusPlus(m *mat.Dense, k int, rng *rand.Rand) [][]float64 {
	rows, cols := m.Dims()
	centroids := make([][]float64, 0, k)

	first := make([]float64, cols)
	mat.Row(first, rng.Intn(rows), m)
	centroids = append(centroids, first)

	dist := make([]float64, rows)
	for len(centroids) < k {
		var total float64
		for i := 0; i < rows; i++ {
			best := math.Inf(1)
			for _, c := range centroids {
				if d := sqDistTo(m, i, c); d < best {
					best = d
				}
			}
			dist[i] = best
			total += best
		}

		pick := rows - 1
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i := 0; i < rows; i++ {
				acc += dist[i]
				if acc >= target {
					pick = i
					break
				}
			}
		} else {
			pick = rng.Intn(rows)
		}
		next := make([]float64, cols)
		mat.Row(next, pick, m)
		centroids = append(centroids, next)
	}
	return centroids
}

func farthestPoint(m *mat.Dense, centroids [][]float64, labels []int) int {
	rows, _ := m.Dims()
	far, farDist := 0, -1.0
	for i := 0; i < rows; i++ {
		if d := sqDistTo(m, i, centroids[labels[i]]); d > farDist {
			far, farDist = i, d
		}
	}
	return far
}
