// Package pipeline wires the segmentation run end to end: load and merge the
// input CSVs, build the standardized feature matrix, run the clustering
// roster, score every algorithm, and render the artifacts. Everything is
// driven from an explicit Config so tests can run the pipeline without
// touching the CLI.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/cluster"
	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/dataset"
	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/evaluate"
	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/features"
	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/report"
)

// Config carries every knob of a segmentation run.
type Config struct {
	CustomersPath    string
	TransactionsPath string
	OutputDir        string

	Clusters int   // shared cluster count for the partition-based algorithms
	Seed     int64 // shared seed for the stochastic algorithms
	Parallel bool  // fan the roster out across goroutines

	ZeroVariance features.ZeroVariancePolicy

	SnapshotTable bool // also write the merged table as an Arrow IPC file
	SkipArtifacts bool // compute labels and metrics only
}

// DefaultConfig mirrors the fixed reference parameters: four clusters,
// seed 42.
func DefaultConfig() Config {
	return Config{Clusters: 4, Seed: 42}
}

// Results is the structured outcome of a run.
type Results struct {
	Merged  *dataset.Table
	Matrix  *mat.Dense
	Columns []string

	Clusterings []cluster.Result
	Scores      map[string]evaluate.Score

	ReportPDF    string
	AnnotatedCSV string
}

// Run executes the full segmentation pipeline.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) (*Results, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Clusters <= 0 {
		cfg.Clusters = 4
	}

	customers, transactions, err := loadStage(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer customers.Release()
	defer transactions.Release()

	merged, matrix, columns, err := featureStage(cfg, customers, transactions, logger)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	roster := cluster.DefaultRoster(cfg.Clusters, cfg.Seed)
	runner := cluster.NewRunner(logger, cfg.Parallel)
	clusterings := runner.Run(ctx, matrix, roster)
	stageLatency.WithLabelValues("cluster").Observe(time.Since(start).Seconds())

	start = time.Now()
	scores := make(map[string]evaluate.Score, len(clusterings))
	for _, res := range clusterings {
		if res.Err != nil {
			continue
		}
		scores[res.Name] = evaluate.ScoreLabels(matrix, res.Labels)
	}
	stageLatency.WithLabelValues("evaluate").Observe(time.Since(start).Seconds())

	results := &Results{
		Merged:      merged,
		Matrix:      matrix,
		Columns:     columns,
		Clusterings: clusterings,
		Scores:      scores,
	}

	if !cfg.SkipArtifacts {
		start = time.Now()
		writeArtifacts(cfg, results, roster, logger)
		stageLatency.WithLabelValues("report").Observe(time.Since(start).Seconds())
	}
	return results, nil
}

func loadStage(cfg Config, logger *zap.Logger) (*dataset.Table, *dataset.Table, error) {
	start := time.Now()
	defer func() {
		stageLatency.WithLabelValues("load").Observe(time.Since(start).Seconds())
	}()

	customers, err := dataset.LoadCustomers(cfg.CustomersPath)
	if err != nil {
		return nil, nil, err
	}
	transactions, err := dataset.LoadTransactions(cfg.TransactionsPath)
	if err != nil {
		customers.Release()
		return nil, nil, err
	}
	logger.Info("inputs loaded",
		zap.Int("customers", customers.NumRows()),
		zap.Int("transactions", transactions.NumRows()))
	return customers, transactions, nil
}

func featureStage(cfg Config, customers, transactions *dataset.Table, logger *zap.Logger) (*dataset.Table, *mat.Dense, []string, error) {
	start := time.Now()
	defer func() {
		stageLatency.WithLabelValues("features").Observe(time.Since(start).Seconds())
	}()

	agg, err := dataset.AggregateTransactions(transactions)
	if err != nil {
		return nil, nil, nil, err
	}
	merged, err := dataset.Merge(customers, agg)
	if err != nil {
		return nil, nil, nil, err
	}

	matrix, columns, err := features.Build(merged, features.Options{ZeroVariance: cfg.ZeroVariance})
	if err != nil {
		merged.Release()
		return nil, nil, nil, err
	}
	logger.Info("feature matrix built",
		zap.Int("rows", merged.NumRows()),
		zap.Strings("columns", columns))
	return merged, matrix, columns, nil
}

// writeArtifacts renders every diagnostic artifact. Failures are logged and
// the artifact skipped, never retried.
func writeArtifacts(cfg Config, results *Results, roster []cluster.Algorithm, logger *zap.Logger) {
	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = "output"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Warn("cannot create output directory", zap.Error(err))
		return
	}

	var pages []report.Page
	addPage := func(title, path string, err error) {
		if err != nil {
			logger.Warn("artifact write failed", zap.String("artifact", title), zap.Error(err))
			return
		}
		pages = append(pages, report.Page{Title: title, Image: path})
	}

	for _, res := range results.Clusterings {
		if res.Err != nil {
			continue
		}

		scatter := filepath.Join(outDir, res.Name+"_cluster_visualization.png")
		addPage(res.Name+" Cluster Visualization",
			scatter,
			report.ClusterScatter(results.Matrix, res.Labels, results.Columns, res.Name+" Cluster Visualization", scatter))

		pairs := filepath.Join(outDir, res.Name+"_pairplot.png")
		addPage(res.Name+" Pairplot",
			pairs,
			report.PairGrid(results.Matrix, res.Labels, results.Columns, pairs))

		if score, ok := results.Scores[res.Name]; ok && score.SilhouetteOK {
			if samples, ok := evaluate.SilhouetteSamples(results.Matrix, res.Labels); ok {
				sil := filepath.Join(outDir, res.Name+"_silhouette_plot.png")
				addPage(res.Name+" Silhouette Plot",
					sil,
					report.SilhouetteBars(samples, res.Labels, score.Silhouette, "Silhouette Plot for "+res.Name, sil))
			}
		}

		// The dendrogram exists for the hierarchical algorithm only; its
		// fitted instance carries the merge history.
		if agg, ok := rosterClusterer(res.Name, roster).(*cluster.Agglomerative); ok && len(agg.Linkage()) > 0 {
			dend := filepath.Join(outDir, res.Name+"_dendrogram.png")
			addPage("Dendrogram for "+res.Name,
				dend,
				report.Dendrogram(agg.Linkage(), "Dendrogram for "+res.Name, dend))
		}
	}

	summary := report.SummaryLines(results.Clusterings, results.Scores)
	results.ReportPDF = filepath.Join(outDir, "Clustering_Report.pdf")
	if err := report.BuildPDF("Clustering Report: eCommerce Transactions Dataset", summary, pages, results.ReportPDF); err != nil {
		logger.Warn("report pdf failed", zap.Error(err))
		results.ReportPDF = ""
	}

	results.AnnotatedCSV = filepath.Join(outDir, "Clustering_Labels.csv")
	if err := report.WriteAnnotatedCSV(results.Merged, results.Clusterings, results.AnnotatedCSV); err != nil {
		logger.Warn("annotated csv failed", zap.Error(err))
		results.AnnotatedCSV = ""
	}

	if cfg.SnapshotTable {
		snap := filepath.Join(outDir, "Merged_Table.arrow")
		if err := dataset.SaveTable(results.Merged, snap); err != nil {
			logger.Warn("table snapshot failed", zap.Error(err))
		}
	}

	if results.ReportPDF != "" {
		logger.Info("clustering report written",
			zap.String("pdf", results.ReportPDF),
			zap.String("csv", results.AnnotatedCSV),
			zap.Int("pages", len(pages)))
	}
}

func rosterClusterer(name string, roster []cluster.Algorithm) cluster.Clusterer {
	for _, alg := range roster {
		if alg.Name == name {
			return alg.Clusterer
		}
	}
	return nil
}
