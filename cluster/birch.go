package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Birch performs threshold-driven clustering-feature absorption in one pass
// over the rows, then Ward-agglomerates the resulting subcluster centroids
// down to K global clusters. Branching caps the number of subclusters; when
// the cap is hit the threshold grows and the features are rebuilt, which is
// the rebuild step of the original CF-tree formulation flattened to a single
// level.
type Birch struct {
	Threshold float64
	Branching int
	K         int
}

type clusteringFeature struct {
	n         float64
	linearSum []float64
	squareSum float64
}

func (cf *clusteringFeature) centroid() []float64 {
	c := make([]float64, len(cf.linearSum))
	for i, v := range cf.linearSum {
		c[i] = v / cf.n
	}
	return c
}

// radiusWith returns the subcluster radius after absorbing p.
func (cf *clusteringFeature) radiusWith(p []float64) float64 {
	n := cf.n + 1
	var centroidNorm, squareSum float64
	squareSum = cf.squareSum
	for i, v := range p {
		squareSum += v * v
		c := (cf.linearSum[i] + v) / n
		centroidNorm += c * c
	}
	r2 := squareSum/n - centroidNorm
	if r2 < 0 {
		r2 = 0
	}
	return math.Sqrt(r2)
}

func (cf *clusteringFeature) absorb(p []float64) {
	cf.n++
	for i, v := range p {
		cf.linearSum[i] += v
		cf.squareSum += v * v
	}
}

// Fit builds the subclusters and maps every row to its global cluster.
func (b *Birch) Fit(m *mat.Dense) ([]int, error) {
	rows, cols := m.Dims()
	if b.K <= 0 || b.K > rows {
		return nil, fmt.Errorf("cluster: birch: invalid K=%d for %d rows", b.K, rows)
	}
	threshold := b.Threshold
	if threshold == 0 {
		threshold = 0.5
	}
	branching := b.Branching
	if branching == 0 {
		branching = 50
	}

	var features []*clusteringFeature
	var assignment []int
	for {
		features = features[:0]
		assignment = make([]int, rows)
		overflow := false
		for i := 0; i < rows; i++ {
			p := make([]float64, cols)
			mat.Row(p, i, m)

			best, bestDist := -1, math.Inf(1)
			for f := range features {
				if d := euclidean(p, features[f].centroid()); d < bestDist {
					best, bestDist = f, d
				}
			}
			if best >= 0 && features[best].radiusWith(p) <= threshold {
				features[best].absorb(p)
				assignment[i] = best
				continue
			}
			if len(features) == branching {
				overflow = true
				break
			}
			cf := &clusteringFeature{n: 1, linearSum: append([]float64{}, p...)}
			for _, v := range p {
				cf.squareSum += v * v
			}
			features = append(features, cf)
			assignment[i] = len(features) - 1
		}
		if !overflow {
			break
		}
		threshold *= 2
	}

	if len(features) <= b.K {
		return relabel(assignment), nil
	}

	// Global step: Ward on the subcluster centroids.
	centroids := mat.NewDense(len(features), cols, nil)
	for f := range features {
		centroids.SetRow(f, features[f].centroid())
	}
	agg := &Agglomerative{K: b.K}
	global, err := agg.Fit(centroids)
	if err != nil {
		return nil, err
	}

	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		labels[i] = global[assignment[i]]
	}
	return relabel(labels), nil
}
