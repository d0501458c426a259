package features

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/dataset"
)

type mergedRow struct {
	region   string
	year     int64
	count    int64
	value    float64
	quantity int64
}

func makeMerged(rows []mergedRow) *dataset.Table {
	pool := memory.DefaultAllocator
	idB := array.NewStringBuilder(pool)
	regionB := array.NewStringBuilder(pool)
	signupB := array.NewStringBuilder(pool)
	yearB := array.NewInt64Builder(pool)
	typeB := array.NewStringBuilder(pool)
	valueB := array.NewFloat64Builder(pool)
	countB := array.NewInt64Builder(pool)
	quantityB := array.NewInt64Builder(pool)

	for i, r := range rows {
		idB.Append(fmt.Sprintf("C%03d", i))
		regionB.Append(r.region)
		signupB.Append(fmt.Sprintf("%d-01-01", r.year))
		yearB.Append(r.year)
		typeB.Append("Unknown")
		valueB.Append(r.value)
		countB.Append(r.count)
		quantityB.Append(r.quantity)
	}

	cols := []arrow.Array{
		idB.NewArray(), regionB.NewArray(), signupB.NewArray(), yearB.NewArray(),
		typeB.NewArray(), valueB.NewArray(), countB.NewArray(), quantityB.NewArray(),
	}
	rec := array.NewRecord(dataset.MergedSchema, cols, int64(len(rows)))
	for _, c := range cols {
		c.Release()
	}
	return dataset.NewTable(rec)
}

func TestBuildColumnOrder(t *testing.T) {
	merged := makeMerged([]mergedRow{
		{"Europe", 2022, 1, 10, 1},
		{"Asia", 2023, 2, 20, 2},
		{"North America", 2024, 3, 30, 3},
	})
	defer merged.Release()

	m, columns, err := Build(merged, Options{})
	require.NoError(t, err)

	// Asia sorts first and is the dropped reference category.
	assert.Equal(t, []string{
		"SignupYear", "TransactionCount", "TotalValue", "TotalQuantity",
		"Region_Europe", "Region_North America",
	}, columns)

	rows, cols := m.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, len(columns), cols)
}

func TestBuildOneHotIndicators(t *testing.T) {
	merged := makeMerged([]mergedRow{
		{"Asia", 2022, 1, 10, 1},
		{"Europe", 2023, 2, 20, 2},
	})
	defer merged.Release()

	m, columns, err := Build(merged, Options{})
	require.NoError(t, err)
	require.Equal(t, "Region_Europe", columns[4])

	// Two rows, one indicator column: after standardization the Asia row is
	// negative and the Europe row positive, symmetric around zero.
	assert.InDelta(t, -m.At(1, 4), m.At(0, 4), 1e-12)
	assert.Greater(t, m.At(1, 4), 0.0)
}

func TestStandardizedMoments(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(3, 60).Draw(t, "rows")
		regions := []string{"Asia", "Europe", "South America"}
		rows := make([]mergedRow, n)
		for i := range rows {
			rows[i] = mergedRow{
				region:   regions[i%len(regions)],
				year:     rapid.Int64Range(2018, 2024).Draw(t, "year"),
				count:    int64(i + 1), // guarantees variance
				value:    rapid.Float64Range(1, 1000).Draw(t, "value"),
				quantity: rapid.Int64Range(0, 50).Draw(t, "quantity"),
			}
		}
		merged := makeMerged(rows)
		defer merged.Release()

		m, columns, err := Build(merged, Options{ZeroVariance: ZeroVarianceZero})
		if err != nil {
			t.Fatalf("build: %v", err)
		}

		rowsN, cols := m.Dims()
		for j := 0; j < cols; j++ {
			mean, variance := 0.0, 0.0
			for i := 0; i < rowsN; i++ {
				mean += m.At(i, j)
			}
			mean /= float64(rowsN)
			for i := 0; i < rowsN; i++ {
				d := m.At(i, j) - mean
				variance += d * d
			}
			variance /= float64(rowsN)

			if math.Abs(mean) > 1e-9 {
				t.Fatalf("column %s: mean %v not ~0", columns[j], mean)
			}
			// Constant columns fall under the zero-variance policy; all
			// others must standardize to unit variance.
			if variance != 0 && math.Abs(variance-1) > 1e-9 {
				t.Fatalf("column %s: variance %v not ~1", columns[j], variance)
			}
		}
	})
}

func TestZeroVarianceFail(t *testing.T) {
	// Single region, single year, identical counts: several constant columns.
	merged := makeMerged([]mergedRow{
		{"Asia", 2022, 1, 10, 1},
		{"Asia", 2022, 1, 20, 2},
	})
	defer merged.Release()

	_, _, err := Build(merged, Options{ZeroVariance: ZeroVarianceFail})
	require.Error(t, err)

	var degenerate *DegenerateFeatureError
	require.True(t, errors.As(err, &degenerate))
	assert.Equal(t, "SignupYear", degenerate.Column)
}

func TestZeroVarianceZeroFallback(t *testing.T) {
	merged := makeMerged([]mergedRow{
		{"Asia", 2022, 1, 10, 1},
		{"Asia", 2022, 1, 20, 2},
	})
	defer merged.Release()

	m, columns, err := Build(merged, Options{ZeroVariance: ZeroVarianceZero})
	require.NoError(t, err)

	// With one region there is no indicator column at all.
	assert.Equal(t, []string{"SignupYear", "TransactionCount", "TotalValue", "TotalQuantity"}, columns)

	// Constant columns stay at exactly zero instead of dividing by zero.
	assert.Equal(t, 0.0, m.At(0, 0))
	assert.Equal(t, 0.0, m.At(1, 0))
	assert.Equal(t, 0.0, m.At(0, 1))
	assert.NotEqual(t, m.At(0, 2), m.At(1, 2))
}
