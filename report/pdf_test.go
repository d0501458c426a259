package report

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/cluster"
	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/evaluate"
)

func TestSummaryLines(t *testing.T) {
	results := []cluster.Result{
		{Name: "KMeans", Labels: []int{0, 1}},
		{Name: "DBSCAN", Labels: []int{0, 0}},
		{Name: "Spectral", Err: errors.New("eigendecomposition failed")},
	}
	scores := map[string]evaluate.Score{
		"KMeans": {DaviesBouldin: 0.51234, Silhouette: 0.61, SilhouetteOK: true},
		"DBSCAN": {DaviesBouldin: math.Inf(1)},
	}

	lines := SummaryLines(results, scores)
	assert.Equal(t, []string{
		"KMeans - Davies-Bouldin Index: 0.5123",
		"KMeans - Silhouette Score: 0.6100",
		"DBSCAN - Davies-Bouldin Index: not computable",
		"Spectral - failed: eigendecomposition failed",
	}, lines)
}

func TestBuildPDFWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	summary := []string{"KMeans - Davies-Bouldin Index: 0.5123"}

	require.NoError(t, BuildPDF("Clustering Report", summary, nil, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
