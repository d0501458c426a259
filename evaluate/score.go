package evaluate

import "gonum.org/v1/gonum/mat"

// Score bundles the per-algorithm quality metrics. SilhouetteOK is false
// when the silhouette precondition failed, in which case Silhouette is
// meaningless and must stay out of every report.
type Score struct {
	DaviesBouldin float64
	Silhouette    float64
	SilhouetteOK  bool
}

// ScoreLabels computes both metrics for one label vector.
func ScoreLabels(m *mat.Dense, labels []int) Score {
	s := Score{DaviesBouldin: DaviesBouldin(m, labels)}
	s.Silhouette, s.SilhouetteOK = Silhouette(m, labels)
	return s
}
