// Package features turns the merged customer table into the standardized
// numeric matrix shared by every clustering algorithm.
//
// Column order is fixed and documented: the numeric features first
// (SignupYear, TransactionCount, TotalValue, TotalQuantity), then one
// indicator column per region category in ascending lexical order with the
// first category dropped as the reference level.
package features

import (
	"fmt"
	"math"
	"sort"

	"github.com/apache/arrow-go/v18/arrow/array"
	"gonum.org/v1/gonum/mat"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/dataset"
)

// DegenerateFeatureError reports a zero-variance column encountered during
// standardization under the ZeroVarianceFail policy.
type DegenerateFeatureError struct {
	Column string
}

func (e *DegenerateFeatureError) Error() string {
	return fmt.Sprintf("features: column %q has zero variance", e.Column)
}

// ZeroVariancePolicy selects how standardization treats a constant column.
type ZeroVariancePolicy int

const (
	// ZeroVarianceFail returns a DegenerateFeatureError. Default.
	ZeroVarianceFail ZeroVariancePolicy = iota
	// ZeroVarianceZero leaves the centered column at constant zero.
	ZeroVarianceZero
)

// Options configures feature building.
type Options struct {
	ZeroVariance ZeroVariancePolicy
}

// Build selects the clustering features from the merged table, one-hot
// encodes Region, and standardizes every column with population statistics
// computed over all rows. It returns the matrix and the ordered column names.
func Build(merged *dataset.Table, opts Options) (*mat.Dense, []string, error) {
	regions, err := merged.Strings("Region")
	if err != nil {
		return nil, nil, err
	}
	years, err := merged.Ints("SignupYear")
	if err != nil {
		return nil, nil, err
	}
	counts, err := merged.Ints("TransactionCount")
	if err != nil {
		return nil, nil, err
	}
	values, err := merged.Floats("TotalValue")
	if err != nil {
		return nil, nil, err
	}
	quantities, err := merged.Ints("TotalQuantity")
	if err != nil {
		return nil, nil, err
	}

	n := merged.NumRows()
	if n == 0 {
		return nil, nil, fmt.Errorf("features: merged table has no rows")
	}

	categories := regionCategories(regions, n)
	// Reference level: the lexically first category is dropped.
	encoded := categories
	if len(encoded) > 0 {
		encoded = categories[1:]
	}

	columns := []string{"SignupYear", "TransactionCount", "TotalValue", "TotalQuantity"}
	for _, c := range encoded {
		columns = append(columns, "Region_"+c)
	}

	m := mat.NewDense(n, len(columns), nil)
	for i := 0; i < n; i++ {
		m.Set(i, 0, float64(years.Value(i)))
		m.Set(i, 1, float64(counts.Value(i)))
		m.Set(i, 2, values.Value(i))
		m.Set(i, 3, float64(quantities.Value(i)))
		for j, c := range encoded {
			if regions.Value(i) == c {
				m.Set(i, 4+j, 1)
			}
		}
	}

	if err := standardize(m, columns, opts.ZeroVariance); err != nil {
		return nil, nil, err
	}
	return m, columns, nil
}

// regionCategories returns the distinct region values in ascending order.
func regionCategories(regions *array.String, n int) []string {
	seen := make(map[string]struct{})
	var categories []string
	for i := 0; i < n; i++ {
		v := regions.Value(i)
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			categories = append(categories, v)
		}
	}
	sort.Strings(categories)
	return categories
}

// standardize rescales each column in place to zero mean and unit variance
// using population statistics over all rows.
func standardize(m *mat.Dense, columns []string, policy ZeroVariancePolicy) error {
	rows, cols := m.Dims()
	for j := 0; j < cols; j++ {
		mean := 0.0
		for i := 0; i < rows; i++ {
			mean += m.At(i, j)
		}
		mean /= float64(rows)

		variance := 0.0
		for i := 0; i < rows; i++ {
			d := m.At(i, j) - mean
			variance += d * d
		}
		variance /= float64(rows)

		if variance == 0 {
			if policy == ZeroVarianceFail {
				return &DegenerateFeatureError{Column: columns[j]}
			}
			for i := 0; i < rows; i++ {
				m.Set(i, j, 0)
			}
			continue
		}

		std := math.Sqrt(variance)
		for i := 0; i < rows; i++ {
			m.Set(i, j, (m.At(i, j)-mean)/std)
		}
	}
	return nil
}
