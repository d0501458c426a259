package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Spectral partitions rows by embedding them with the K smallest eigenvectors
// of the normalized graph Laplacian of an RBF affinity matrix, then running
// seeded k-means on the row-normalized embedding.
type Spectral struct {
	K     int
	Gamma float64
	Seed  int64
}

// Fit computes the spectral embedding and clusters it.
func (s *Spectral) Fit(m *mat.Dense) ([]int, error) {
	rows, _ := m.Dims()
	if s.K <= 0 || s.K > rows {
		return nil, fmt.Errorf("cluster: spectral: invalid K=%d for %d rows", s.K, rows)
	}
	gamma := s.Gamma
	if gamma == 0 {
		gamma = 1.0
	}

	// RBF affinity and degree.
	affinity := mat.NewSymDense(rows, nil)
	degree := make([]float64, rows)
	for i := 0; i < rows; i++ {
		affinity.SetSym(i, i, 1)
		for j := i + 1; j < rows; j++ {
			a := math.Exp(-gamma * sqDist(m, i, j))
			affinity.SetSym(i, j, a)
		}
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < rows; j++ {
			degree[i] += affinity.At(i, j)
		}
	}

	// Normalized Laplacian: L = I - D^{-1/2} A D^{-1/2}.
	laplacian := mat.NewSymDense(rows, nil)
	for i := 0; i < rows; i++ {
		for j := i; j < rows; j++ {
			norm := affinity.At(i, j) / math.Sqrt(degree[i]*degree[j])
			if i == j {
				laplacian.SetSym(i, j, 1-norm)
			} else {
				laplacian.SetSym(i, j, -norm)
			}
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(laplacian, true); !ok {
		return nil, fmt.Errorf("cluster: spectral: eigendecomposition failed")
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Eigenvalues come back ascending, so the embedding is the first K columns.
	embedding := mat.NewDense(rows, s.K, nil)
	for i := 0; i < rows; i++ {
		norm := 0.0
		for j := 0; j < s.K; j++ {
			v := vectors.At(i, j)
			embedding.Set(i, j, v)
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := 0; j < s.K; j++ {
				embedding.Set(i, j, embedding.At(i, j)/norm)
			}
		}
	}

	km := &KMeans{K: s.K, Seed: s.Seed}
	return km.Fit(embedding)
}
