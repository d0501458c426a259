// Package evaluate computes cluster-quality metrics over the feature matrix
// and a label vector. Both metrics are pure functions: they never mutate
// their inputs.
//
// The single-cluster policy is asymmetric on purpose, mirroring the system
// this replaces: Davies-Bouldin degrades to the +Inf sentinel while the
// silhouette score is omitted entirely. The noise sentinel counts as a
// distinct label value for the two-cluster precondition, exactly like a
// `len(set(labels)) > 1` test would.
package evaluate

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/cluster"
)

// NotComputable is the Davies-Bouldin sentinel for single-cluster outcomes.
var NotComputable = math.Inf(1)

// DaviesBouldin returns the Davies-Bouldin index: the mean, over clusters,
// of the worst ratio of summed within-cluster scatter to between-centroid
// separation. Lower is better; the result is non-negative whenever it is
// computable and NotComputable otherwise.
func DaviesBouldin(m *mat.Dense, labels []int) float64 {
	idx := cluster.NewMembershipIndex(labels)
	values := idx.Labels()
	if len(values) < 2 {
		return NotComputable
	}

	_, cols := m.Dims()
	centroids := make([][]float64, len(values))
	scatter := make([]float64, len(values))
	for c, label := range values {
		rows := idx.Rows(label)
		centroid := make([]float64, cols)
		for _, r := range rows {
			for j := 0; j < cols; j++ {
				centroid[j] += m.At(int(r), j)
			}
		}
		for j := 0; j < cols; j++ {
			centroid[j] /= float64(len(rows))
		}
		centroids[c] = centroid

		for _, r := range rows {
			scatter[c] += distTo(m, int(r), centroid)
		}
		scatter[c] /= float64(len(rows))
	}

	db := 0.0
	for i := range values {
		worst := 0.0
		for j := range values {
			if i == j {
				continue
			}
			sep := dist(centroids[i], centroids[j])
			if sep == 0 {
				continue
			}
			if ratio := (scatter[i] + scatter[j]) / sep; ratio > worst {
				worst = ratio
			}
		}
		db += worst
	}
	return db / float64(len(values))
}

// Silhouette returns the mean silhouette score over all rows. The second
// return is false when fewer than two distinct label values exist, in which
// case the score carries no meaning and must not be reported.
func Silhouette(m *mat.Dense, labels []int) (float64, bool) {
	samples, ok := SilhouetteSamples(m, labels)
	if !ok {
		return 0, false
	}
	total := 0.0
	for _, s := range samples {
		total += s
	}
	return total / float64(len(samples)), true
}

// SilhouetteSamples returns the per-row silhouette values, used by both the
// mean score and the silhouette bar chart. Rows in singleton clusters score
// zero by convention.
func SilhouetteSamples(m *mat.Dense, labels []int) ([]float64, bool) {
	idx := cluster.NewMembershipIndex(labels)
	values := idx.Labels()
	if len(values) < 2 {
		return nil, false
	}

	rows, _ := m.Dims()
	samples := make([]float64, rows)
	for i := 0; i < rows; i++ {
		own := labels[i]
		if idx.Size(own) == 1 {
			continue
		}

		// a: mean distance to the rest of the row's own cluster.
		a := 0.0
		for _, r := range idx.Rows(own) {
			if int(r) == i {
				continue
			}
			a += rowDist(m, i, int(r))
		}
		a /= float64(idx.Size(own) - 1)

		// b: smallest mean distance to any other cluster.
		b := math.Inf(1)
		for _, other := range values {
			if other == own {
				continue
			}
			d := 0.0
			for _, r := range idx.Rows(other) {
				d += rowDist(m, i, int(r))
			}
			d /= float64(idx.Size(other))
			if d < b {
				b = d
			}
		}

		if denom := math.Max(a, b); denom > 0 {
			samples[i] = (b - a) / denom
		}
	}
	return samples, true
}

func rowDist(m *mat.Dense, i, j int) float64 {
	_, cols := m.Dims()
	var sum float64
	for c := 0; c < cols; c++ {
		d := m.At(i, c) - m.At(j, c)
		sum += d * d
	}
	return math.Sqrt(sum)
}

func distTo(m *mat.Dense, i int, p []float64) float64 {
	var sum float64
	for c := range p {
		d := m.At(i, c) - p[c]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func dist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
