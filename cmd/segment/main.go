package main

import (
	"context"
	"fmt"
	"os"

	"github.com/docopt/docopt.go"
	"go.uber.org/zap"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/dataset"
	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/eda"
	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/features"
	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/pipeline"
)

func main() {
	usage := `eCommerce customer segmentation.

Usage:
  segment cluster --customers=<path> --transactions=<path> [--output=<dir>] [--clusters=<n>] [--seed=<n>] [--parallel] [--snapshot] [--zero-variance-ok]
  segment eda --customers=<path> --transactions=<path> --products=<path> [--output=<dir>]
  segment (-h | --help)
  segment --version

Options:
  -h --help              Show this screen.
  --version              Show version.
  --customers=<path>     Customers CSV file.
  --transactions=<path>  Transactions CSV file.
  --products=<path>      Products CSV file (EDA only).
  --output=<dir>         Output directory [default: output].
  --clusters=<n>         Cluster count for partition-based algorithms [default: 4].
  --seed=<n>             Seed for stochastic algorithms [default: 42].
  --parallel             Run the algorithm roster concurrently.
  --snapshot             Also write the merged table as an Arrow IPC file.
  --zero-variance-ok     Keep zero-variance feature columns as constant zero
                         instead of failing.
`
	arguments, err := docopt.ParseDoc(usage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing arguments: %v\n", err)
		os.Exit(1)
	}
	if v, _ := arguments.Bool("--version"); v {
		fmt.Println("segment version 1.0.0")
		os.Exit(0)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	if ok, _ := arguments.Bool("eda"); ok {
		runEDA(arguments, logger)
		return
	}

	cfg := pipeline.DefaultConfig()
	cfg.CustomersPath, _ = arguments.String("--customers")
	cfg.TransactionsPath, _ = arguments.String("--transactions")
	cfg.OutputDir, _ = arguments.String("--output")
	if n, err := arguments.Int("--clusters"); err == nil {
		cfg.Clusters = n
	}
	if n, err := arguments.Int("--seed"); err == nil {
		cfg.Seed = int64(n)
	}
	cfg.Parallel, _ = arguments.Bool("--parallel")
	cfg.SnapshotTable, _ = arguments.Bool("--snapshot")
	if ok, _ := arguments.Bool("--zero-variance-ok"); ok {
		cfg.ZeroVariance = features.ZeroVarianceZero
	}

	results, err := pipeline.Run(ctx, cfg, logger)
	if err != nil {
		logger.Error("segmentation failed", zap.Error(err))
		os.Exit(1)
	}

	for _, res := range results.Clusterings {
		if res.Err != nil {
			continue
		}
		score := results.Scores[res.Name]
		logger.Info("algorithm scored",
			zap.String("algorithm", res.Name),
			zap.Float64("davies_bouldin", score.DaviesBouldin),
			zap.Bool("silhouette_computed", score.SilhouetteOK))
	}
	fmt.Printf("Clustering report saved to %s\n", results.ReportPDF)
	fmt.Printf("Clustered data saved to %s\n", results.AnnotatedCSV)
}

func runEDA(arguments docopt.Opts, logger *zap.Logger) {
	customersPath, _ := arguments.String("--customers")
	transactionsPath, _ := arguments.String("--transactions")
	productsPath, _ := arguments.String("--products")
	outDir, _ := arguments.String("--output")

	customers, err := dataset.LoadCustomers(customersPath)
	if err != nil {
		logger.Error("loading customers failed", zap.Error(err))
		os.Exit(1)
	}
	defer customers.Release()

	transactions, err := dataset.LoadTransactions(transactionsPath)
	if err != nil {
		logger.Error("loading transactions failed", zap.Error(err))
		os.Exit(1)
	}
	defer transactions.Release()

	products, err := dataset.LoadProducts(productsPath)
	if err != nil {
		logger.Error("loading products failed", zap.Error(err))
		os.Exit(1)
	}
	defer products.Release()

	full, err := dataset.MergeFull(transactions, customers, products)
	if err != nil {
		logger.Error("merging failed", zap.Error(err))
		os.Exit(1)
	}
	defer full.Release()

	artifacts, err := eda.Run(full, outDir, logger)
	if err != nil {
		logger.Error("eda failed", zap.Error(err))
		os.Exit(1)
	}
	fmt.Printf("EDA report saved to %s\n", artifacts.PDF)
	fmt.Printf("Processed data saved to %s\n", artifacts.MergedCSV)
	fmt.Println("EDA complete!")
}
