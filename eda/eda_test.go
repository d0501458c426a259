package eda

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/dataset"
)

// makeFull builds a minimal merged-transactions table for the aggregations.
func makeFull(t *testing.T) *dataset.Table {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "TransactionID", Type: arrow.BinaryTypes.String},
		{Name: "CustomerID", Type: arrow.BinaryTypes.String},
		{Name: "TransactionDate", Type: arrow.BinaryTypes.String},
		{Name: "Quantity", Type: arrow.PrimitiveTypes.Int64},
		{Name: "TotalValue", Type: arrow.PrimitiveTypes.Float64},
		{Name: "Region", Type: arrow.BinaryTypes.String},
		{Name: "SignupYear", Type: arrow.PrimitiveTypes.Int64},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()

	txIDs := []string{"T1", "T2", "T3", "T4"}
	customers := []string{"C1", "C1", "C2", "C3"}
	dates := []string{"2024-01-05", "2024-01-20", "2024-02-01", "2024-02-14"}
	quantities := []int64{1, 2, 3, 4}
	values := []float64{100, 200, 50, 25}
	regions := []string{"Asia", "Asia", "Europe", "Asia"}
	years := []int64{2022, 2022, 2023, 2022}

	b.Field(0).(*array.StringBuilder).AppendValues(txIDs, nil)
	b.Field(1).(*array.StringBuilder).AppendValues(customers, nil)
	b.Field(2).(*array.StringBuilder).AppendValues(dates, nil)
	b.Field(3).(*array.Int64Builder).AppendValues(quantities, nil)
	b.Field(4).(*array.Float64Builder).AppendValues(values, nil)
	b.Field(5).(*array.StringBuilder).AppendValues(regions, nil)
	b.Field(6).(*array.Int64Builder).AppendValues(years, nil)

	return dataset.NewTable(b.NewRecord())
}

func TestGroupSumByRegion(t *testing.T) {
	full := makeFull(t)
	defer full.Release()

	s, err := groupSum(full, "Region", "TotalValue")
	require.NoError(t, err)
	assert.Equal(t, []string{"Asia", "Europe"}, s.Keys)
	assert.Equal(t, []float64{325, 50}, s.Values)
}

func TestMonthlyRevenue(t *testing.T) {
	full := makeFull(t)
	defer full.Release()

	s, err := monthlyRevenue(full)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-02"}, s.Keys)
	assert.Equal(t, []float64{300, 75}, s.Values)
}

func TestPerCustomer(t *testing.T) {
	full := makeFull(t)
	defer full.Release()

	lifetime, err := perCustomer(full, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{300, 50, 25}, lifetime)

	average, err := perCustomer(full, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{150, 50, 25}, average)
}

func TestTransactionCounts(t *testing.T) {
	full := makeFull(t)
	defer full.Release()

	counts, err := transactionCounts(full)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 1}, counts)
}

func TestSignupYearRevenue(t *testing.T) {
	full := makeFull(t)
	defer full.Release()

	s, err := signupYearRevenue(full)
	require.NoError(t, err)
	assert.Equal(t, []string{"2022", "2023"}, s.Keys)
	assert.Equal(t, []float64{325, 50}, s.Values)
}

func TestTopN(t *testing.T) {
	s := &series{Keys: []string{"a", "b", "c"}, Values: []float64{1, 3, 2}}
	top := s.topN(2)
	assert.Equal(t, []string{"b", "c"}, top.Keys)
	assert.Equal(t, []float64{3, 2}, top.Values)

	assert.Len(t, s.topN(10).Keys, 3)
}

func TestGroupSumMissingColumn(t *testing.T) {
	full := makeFull(t)
	defer full.Release()

	_, err := groupSum(full, "Category", "TotalValue")
	assert.Error(t, err)
}
