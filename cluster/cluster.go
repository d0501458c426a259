// Package cluster implements the fixed roster of clustering algorithms run
// over the shared standardized feature matrix.
//
// Every algorithm satisfies the same Clusterer contract regardless of whether
// it naturally reports labels during fitting or exposes membership as a
// separate inference step; adapters hide the surface differences. Labels are
// scoped to the algorithm that produced them, with -1 reserved for noise.
package cluster

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Noise is the sentinel label for points a density-based algorithm leaves
// unassigned. It is preserved as-is in every output, never collapsed into a
// real cluster.
const Noise = -1

// Clusterer fits a feature matrix and returns one integer label per row.
type Clusterer interface {
	Fit(m *mat.Dense) ([]int, error)
}

// matrixRows copies the matrix into a row-slice form for libraries that
// consume [][]float64. The source matrix is never aliased, keeping it
// read-only across algorithms.
func matrixRows(m *mat.Dense) [][]float64 {
	rows, cols := m.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		mat.Row(row, i, m)
		out[i] = row
	}
	return out
}

// sqDist returns the squared Euclidean distance between rows i and j.
func sqDist(m *mat.Dense, i, j int) float64 {
	_, cols := m.Dims()
	var sum float64
	for c := 0; c < cols; c++ {
		d := m.At(i, c) - m.At(j, c)
		sum += d * d
	}
	return sum
}

// sqDistTo returns the squared Euclidean distance between row i and point p.
func sqDistTo(m *mat.Dense, i int, p []float64) float64 {
	var sum float64
	for c := range p {
		d := m.At(i, c) - p[c]
		sum += d * d
	}
	return sum
}

// pairwiseSq returns the full squared-distance matrix between rows.
func pairwiseSq(m *mat.Dense) [][]float64 {
	rows, _ := m.Dims()
	d2 := make([][]float64, rows)
	for i := range d2 {
		d2[i] = make([]float64, rows)
	}
	for i := 0; i < rows; i++ {
		for j := i + 1; j < rows; j++ {
			d := sqDist(m, i, j)
			d2[i][j] = d
			d2[j][i] = d
		}
	}
	return d2
}

// relabel renumbers cluster ids to 0..k-1 in order of first appearance,
// leaving the noise sentinel untouched.
func relabel(labels []int) []int {
	next := 0
	mapping := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		if l == Noise {
			out[i] = Noise
			continue
		}
		id, ok := mapping[l]
		if !ok {
			id = next
			mapping[l] = id
			next++
		}
		out[i] = id
	}
	return out
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
