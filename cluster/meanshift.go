package cluster

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// MeanShift is flat-kernel mode seeking. The cluster count is discovered,
// not configured; the bandwidth is estimated from the data when left zero.
// The procedure is fully deterministic.
type MeanShift struct {
	Bandwidth float64
	Quantile  float64
	MaxIter   int
}

// Fit shifts every row to its local density mode and groups rows whose modes
// coincide within the bandwidth.
func (ms *MeanShift) Fit(m *mat.Dense) ([]int, error) {
	rows, cols := m.Dims()
	if rows == 0 {
		return nil, fmt.Errorf("cluster: meanshift: empty matrix")
	}
	bandwidth := ms.Bandwidth
	if bandwidth == 0 {
		quantile := ms.Quantile
		if quantile == 0 {
			quantile = 0.3
		}
		bandwidth = estimateBandwidth(m, quantile)
	}
	if bandwidth <= 0 {
		// All points identical: one cluster.
		return make([]int, rows), nil
	}
	maxIter := ms.MaxIter
	if maxIter == 0 {
		maxIter = 300
	}
	tol := 1e-3 * bandwidth
	bw2 := bandwidth * bandwidth

	// Shift each row to convergence.
	modes := make([][]float64, rows)
	support := make([]int, rows)
	for i := 0; i < rows; i++ {
		p := make([]float64, cols)
		mat.Row(p, i, m)
		var within int
		for iter := 0; iter < maxIter; iter++ {
			next := make([]float64, cols)
			within = 0
			for j := 0; j < rows; j++ {
				if sqDistTo(m, j, p) > bw2 {
					continue
				}
				within++
				for c := 0; c < cols; c++ {
					next[c] += m.At(j, c)
				}
			}
			if within == 0 {
				break
			}
			for c := 0; c < cols; c++ {
				next[c] /= float64(within)
			}
			shift := euclidean(next, p)
			p = next
			if shift < tol {
				break
			}
		}
		modes[i] = p
		support[i] = within
	}

	// Deduplicate modes: higher-support modes win, ties by row order.
	order := make([]int, rows)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return support[order[a]] > support[order[b]] })

	var centers [][]float64
	for _, i := range order {
		merged := false
		for _, c := range centers {
			if euclidean(modes[i], c) < bandwidth {
				merged = true
				break
			}
		}
		if !merged {
			centers = append(centers, modes[i])
		}
	}

	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		best, bestDist := 0, math.Inf(1)
		for c := range centers {
			if d := euclidean(modes[i], centers[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
	return relabel(labels), nil
}

// estimateBandwidth averages, over all rows, the distance to the
// ceil(quantile*n)-th nearest neighbor.
func estimateBandwidth(m *mat.Dense, quantile float64) float64 {
	rows, _ := m.Dims()
	k := int(float64(rows) * quantile)
	if k < 1 {
		k = 1
	}
	var total float64
	dists := make([]float64, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < rows; j++ {
			dists[j] = math.Sqrt(sqDist(m, i, j))
		}
		sort.Float64s(dists)
		// dists[0] is the self distance; k-th neighbor sits at index k.
		idx := k
		if idx >= rows {
			idx = rows - 1
		}
		total += dists[idx]
	}
	return total / float64(rows)
}
