package cluster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var fitLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name: "segmentation_fit_latency_seconds",
	Help: "Clustering fit latency per algorithm",
}, []string{"algorithm"})

func init() {
	prometheus.MustRegister(fitLatency)
}

// Algorithm is one roster entry: a name scoping the label column and the
// clusterer producing it.
type Algorithm struct {
	Name      string
	Clusterer Clusterer
}

// Result is the outcome of one algorithm. Exactly one of Labels or Err is
// set; failed algorithms are omitted from downstream artifacts.
type Result struct {
	Name     string
	Labels   []int
	Err      error
	Duration time.Duration
}

// DefaultRoster returns the fixed algorithm roster with its fixed parameters.
// All partition counts share k; all stochastic algorithms share seed.
func DefaultRoster(k int, seed int64) []Algorithm {
	return []Algorithm{
		{Name: "KMeans", Clusterer: &KMeans{K: k, Seed: seed}},
		{Name: "Agglomerative", Clusterer: &Agglomerative{K: k}},
		{Name: "DBSCAN", Clusterer: &DBSCAN{Eps: 0.5, MinPts: 5}},
		{Name: "Spectral", Clusterer: &Spectral{K: k, Seed: seed}},
		{Name: "MeanShift", Clusterer: &MeanShift{Quantile: 0.3}},
		{Name: "Birch", Clusterer: &Birch{Threshold: 0.5, Branching: 50, K: k}},
		{Name: "OPTICS", Clusterer: &OPTICS{Eps: 10, MinPts: 5, Xi: 0.05}},
		{Name: "GaussianMixture", Clusterer: &GaussianMixture{Components: k, Seed: seed}},
	}
}

// Runner executes a roster over one shared read-only matrix. Each algorithm
// runs exactly once; a failure (error or panic) is isolated to its own
// Result and the rest of the roster continues.
type Runner struct {
	logger   *zap.Logger
	parallel bool
}

// NewRunner creates a runner. A nil logger disables logging.
func NewRunner(logger *zap.Logger, parallel bool) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, parallel: parallel}
}

// Run fits every roster entry against m and returns one Result per entry,
// in roster order.
func (r *Runner) Run(ctx context.Context, m *mat.Dense, roster []Algorithm) []Result {
	results := make([]Result, len(roster))

	if r.parallel {
		var wg sync.WaitGroup
		for i := range roster {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = r.fitOne(ctx, m, roster[i])
			}(i)
		}
		wg.Wait()
		return results
	}

	for i := range roster {
		results[i] = r.fitOne(ctx, m, roster[i])
	}
	return results
}

func (r *Runner) fitOne(ctx context.Context, m *mat.Dense, alg Algorithm) (res Result) {
	res.Name = alg.Name
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		fitLatency.WithLabelValues(alg.Name).Observe(res.Duration.Seconds())
		if p := recover(); p != nil {
			res.Labels = nil
			res.Err = fmt.Errorf("cluster: %s: panic during fit: %v", alg.Name, p)
		}
		if res.Err != nil {
			r.logger.Warn("clustering algorithm failed",
				zap.String("algorithm", alg.Name),
				zap.Error(res.Err))
			return
		}
		r.logger.Info("clustering algorithm finished",
			zap.String("algorithm", alg.Name),
			zap.Int("clusters", NewMembershipIndex(res.Labels).NumClusters()),
			zap.Duration("duration", res.Duration))
	}()

	res.Labels, res.Err = alg.Clusterer.Fit(m)
	if res.Err == nil {
		rows, _ := m.Dims()
		if len(res.Labels) != rows {
			res.Err = fmt.Errorf("cluster: %s: %d labels for %d rows", alg.Name, len(res.Labels), rows)
			res.Labels = nil
		}
	}
	return res
}
