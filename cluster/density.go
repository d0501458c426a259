package cluster

import (
	"github.com/mpraski/clusters"
	"gonum.org/v1/gonum/mat"
)

// DBSCAN adapts the mpraski/clusters density-based implementation. Points in
// no sufficiently dense neighborhood keep the Noise sentinel.
type DBSCAN struct {
	Eps    float64
	MinPts int
}

// Fit groups rows by neighborhood density.
func (d *DBSCAN) Fit(m *mat.Dense) ([]int, error) {
	c, err := clusters.DBSCAN(d.MinPts, d.Eps, 1, clusters.EuclideanDistance)
	if err != nil {
		return nil, err
	}
	if err := c.Learn(matrixRows(m)); err != nil {
		return nil, err
	}
	return normalizeGuesses(c.Guesses()), nil
}

// OPTICS adapts the mpraski/clusters ordering-based density implementation.
type OPTICS struct {
	Eps    float64
	MinPts int
	Xi     float64
}

// Fit extracts clusters from the reachability ordering.
func (o *OPTICS) Fit(m *mat.Dense) ([]int, error) {
	c, err := clusters.OPTICS(o.MinPts, o.Eps, o.Xi, 1, clusters.EuclideanDistance)
	if err != nil {
		return nil, err
	}
	if err := c.Learn(matrixRows(m)); err != nil {
		return nil, err
	}
	return normalizeGuesses(c.Guesses()), nil
}

// normalizeGuesses maps the library's 1-based cluster ids to 0-based labels,
// preserving the noise sentinel.
func normalizeGuesses(guesses []int) []int {
	labels := make([]int, len(guesses))
	for i, g := range guesses {
		if g <= 0 {
			labels[i] = Noise
			continue
		}
		labels[i] = g - 1
	}
	return labels
}
