package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func fixtureInputs(t *testing.T, dir string) (string, string) {
	t.Helper()

	customers := "CustomerID,CustomerName,Region,SignupDate\n"
	regions := []string{"Asia", "Europe", "North America"}
	for i := 0; i < 12; i++ {
		customers += fmt.Sprintf("C%04d,Customer %d,%s,%d-0%d-15\n",
			i+1, i+1, regions[i%3], 2022+i%3, 1+i%9)
	}

	transactions := "TransactionID,CustomerID,ProductID,TransactionDate,Quantity,TotalValue,Price\n"
	row := 0
	for i := 0; i < 12; i++ {
		for j := 0; j <= i%4; j++ {
			row++
			transactions += fmt.Sprintf("T%05d,C%04d,P%03d,2024-0%d-01,%d,%0.2f,%0.2f\n",
				row, i+1, j+1, 1+j, 1+j, 100.0*float64(i+1), 100.0)
		}
	}

	return writeCSV(t, dir, "Customers.csv", customers),
		writeCSV(t, dir, "Transactions.csv", transactions)
}

func TestRunComputesLabelsAndScores(t *testing.T) {
	dir := t.TempDir()
	customersPath, transactionsPath := fixtureInputs(t, dir)

	cfg := DefaultConfig()
	cfg.CustomersPath = customersPath
	cfg.TransactionsPath = transactionsPath
	cfg.SkipArtifacts = true

	results, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer results.Merged.Release()

	assert.Equal(t, 12, results.Merged.NumRows())
	rows, cols := results.Matrix.Dims()
	assert.Equal(t, 12, rows)
	assert.Equal(t, len(results.Columns), cols)

	require.Len(t, results.Clusterings, 8)
	for _, res := range results.Clusterings {
		if res.Err != nil {
			// A degenerate fixture may defeat a density algorithm; the
			// run itself must still carry the rest.
			assert.Nil(t, res.Labels, res.Name)
			continue
		}
		assert.Len(t, res.Labels, 12, res.Name)
		_, scored := results.Scores[res.Name]
		assert.True(t, scored, res.Name)
	}

	assert.Empty(t, results.ReportPDF)
	assert.Empty(t, results.AnnotatedCSV)
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	customersPath, transactionsPath := fixtureInputs(t, dir)

	cfg := DefaultConfig()
	cfg.CustomersPath = customersPath
	cfg.TransactionsPath = transactionsPath
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.SnapshotTable = true

	results, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer results.Merged.Release()

	require.NotEmpty(t, results.ReportPDF)
	_, err = os.Stat(results.ReportPDF)
	assert.NoError(t, err)

	require.NotEmpty(t, results.AnnotatedCSV)
	_, err = os.Stat(results.AnnotatedCSV)
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "Merged_Table.arrow"))
	assert.NoError(t, err)
}

func TestRunMissingInputFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CustomersPath = filepath.Join(t.TempDir(), "nope.csv")
	cfg.TransactionsPath = cfg.CustomersPath
	cfg.SkipArtifacts = true

	_, err := Run(context.Background(), cfg, nil)
	assert.Error(t, err)
}
