package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Merge is one step of the agglomeration: clusters A and B joined at the
// given height. Leaves are numbered 0..n-1 and the cluster created by merge i
// is numbered n+i, so a full fit produces n-1 merges.
type Merge struct {
	A, B     int
	Distance float64
	Size     int
}

// Agglomerative is bottom-up hierarchical clustering with Ward linkage,
// updated through the Lance-Williams recurrence on squared distances. After
// Fit, Linkage exposes the full merge history for dendrogram rendering.
type Agglomerative struct {
	K int

	merges []Merge
}

// Linkage returns the merge history recorded by the last Fit.
func (a *Agglomerative) Linkage() []Merge { return a.merges }

// Fit merges rows bottom-up until one cluster remains, recording every merge,
// and returns the labels observed when exactly K clusters were active.
func (a *Agglomerative) Fit(m *mat.Dense) ([]int, error) {
	rows, _ := m.Dims()
	if a.K <= 0 || a.K > rows {
		return nil, fmt.Errorf("cluster: agglomerative: invalid K=%d for %d rows", a.K, rows)
	}

	// Slot layout: 0..rows-1 are leaves, rows+i is the cluster from merge i.
	total := 2*rows - 1
	d2 := make([][]float64, total)
	for i := range d2 {
		d2[i] = make([]float64, total)
	}
	base := pairwiseSq(m)
	for i := 0; i < rows; i++ {
		copy(d2[i][:rows], base[i])
	}

	size := make([]int, total)
	members := make([][]int, total)
	active := make([]bool, total)
	for i := 0; i < rows; i++ {
		size[i] = 1
		members[i] = []int{i}
		active[i] = true
	}

	a.merges = make([]Merge, 0, rows-1)
	var labels []int
	remaining := rows

	for step := 0; step < rows-1; step++ {
		if remaining == a.K {
			labels = snapshotLabels(members, active, rows)
		}

		// Closest active pair; ties broken by lowest slot ids.
		bi, bj, best := -1, -1, math.Inf(1)
		limit := rows + step
		for i := 0; i < limit; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < limit; j++ {
				if !active[j] {
					continue
				}
				if d2[i][j] < best {
					bi, bj, best = i, j, d2[i][j]
				}
			}
		}

		merged := rows + step
		size[merged] = size[bi] + size[bj]
		members[merged] = append(append([]int{}, members[bi]...), members[bj]...)
		active[bi], active[bj] = false, false
		active[merged] = true
		remaining--

		// Lance-Williams update for Ward linkage.
		for k := 0; k < merged; k++ {
			if !active[k] {
				continue
			}
			ni, nj, nk := float64(size[bi]), float64(size[bj]), float64(size[k])
			d := ((ni+nk)*d2[bi][k] + (nj+nk)*d2[bj][k] - nk*d2[bi][bj]) / (ni + nj + nk)
			d2[merged][k] = d
			d2[k][merged] = d
		}

		a.merges = append(a.merges, Merge{A: bi, B: bj, Distance: math.Sqrt(best), Size: size[merged]})
	}

	if labels == nil { // K == 1
		labels = snapshotLabels(members, active, rows)
	}
	return labels, nil
}

// snapshotLabels converts the active cluster membership into per-row labels,
// numbering clusters by their smallest member row.
func snapshotLabels(members [][]int, active []bool, rows int) []int {
	labels := make([]int, rows)
	raw := make([]int, rows)
	for slot, on := range active {
		if !on {
			continue
		}
		lead := rows
		for _, r := range members[slot] {
			if r < lead {
				lead = r
			}
		}
		for _, r := range members[slot] {
			raw[r] = lead
		}
	}
	copy(labels, relabel(raw))
	return labels
}
