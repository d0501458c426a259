package dataset

import (
	"fmt"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// makeCustomers builds an in-memory customers table as LoadCustomers would.
func makeCustomers(ids, regions []string, years []int64) *Table {
	pool := memory.DefaultAllocator
	idB := array.NewStringBuilder(pool)
	regionB := array.NewStringBuilder(pool)
	signupB := array.NewStringBuilder(pool)
	yearB := array.NewInt64Builder(pool)
	typeB := array.NewStringBuilder(pool)

	for i := range ids {
		idB.Append(ids[i])
		regionB.Append(regions[i])
		signupB.Append(fmt.Sprintf("%d-01-01", years[i]))
		yearB.Append(years[i])
		typeB.Append("Unknown")
	}

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "CustomerID", Type: arrow.BinaryTypes.String},
		{Name: "Region", Type: arrow.BinaryTypes.String},
		{Name: "SignupDate", Type: arrow.BinaryTypes.String},
		{Name: "SignupYear", Type: arrow.PrimitiveTypes.Int64},
		{Name: "CustomerType", Type: arrow.BinaryTypes.String},
	}, nil)
	cols := []arrow.Array{idB.NewArray(), regionB.NewArray(), signupB.NewArray(), yearB.NewArray(), typeB.NewArray()}
	rec := array.NewRecord(schema, cols, int64(len(ids)))
	for _, c := range cols {
		c.Release()
	}
	for _, b := range []array.Builder{idB, regionB, signupB, yearB, typeB} {
		b.Release()
	}
	return NewTable(rec)
}

// makeTransactions builds an in-memory transactions table.
func makeTransactions(customerIDs []string, values []float64, quantities []int64) *Table {
	pool := memory.DefaultAllocator
	txB := array.NewStringBuilder(pool)
	custB := array.NewStringBuilder(pool)
	prodB := array.NewStringBuilder(pool)
	dateB := array.NewStringBuilder(pool)
	qtyB := array.NewInt64Builder(pool)
	valB := array.NewFloat64Builder(pool)

	for i := range customerIDs {
		txB.Append(fmt.Sprintf("T%04d", i))
		custB.Append(customerIDs[i])
		prodB.Append("P001")
		dateB.Append("2024-03-01")
		qtyB.Append(quantities[i])
		valB.Append(values[i])
	}

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "TransactionID", Type: arrow.BinaryTypes.String},
		{Name: "CustomerID", Type: arrow.BinaryTypes.String},
		{Name: "ProductID", Type: arrow.BinaryTypes.String},
		{Name: "TransactionDate", Type: arrow.BinaryTypes.String},
		{Name: "Quantity", Type: arrow.PrimitiveTypes.Int64},
		{Name: "TotalValue", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
	cols := []arrow.Array{txB.NewArray(), custB.NewArray(), prodB.NewArray(), dateB.NewArray(), qtyB.NewArray(), valB.NewArray()}
	rec := array.NewRecord(schema, cols, int64(len(customerIDs)))
	for _, c := range cols {
		c.Release()
	}
	for _, b := range []array.Builder{txB, custB, prodB, dateB, qtyB, valB} {
		b.Release()
	}
	return NewTable(rec)
}

func TestAggregateAndMergeExample(t *testing.T) {
	// Three customers: two transactions totaling 100, none, one totaling 50.
	customers := makeCustomers(
		[]string{"C1", "C2", "C3"},
		[]string{"Asia", "Asia", "Europe"},
		[]int64{2022, 2023, 2024},
	)
	defer customers.Release()

	transactions := makeTransactions(
		[]string{"C1", "C1", "C3"},
		[]float64{60, 40, 50},
		[]int64{2, 1, 3},
	)
	defer transactions.Release()

	agg, err := AggregateTransactions(transactions)
	require.NoError(t, err)
	assert.Equal(t, Aggregate{TotalValue: 100, TransactionCount: 2, TotalQuantity: 3}, agg["C1"])
	assert.Equal(t, Aggregate{TotalValue: 50, TransactionCount: 1, TotalQuantity: 3}, agg["C3"])
	_, hasC2 := agg["C2"]
	assert.False(t, hasC2)

	merged, err := Merge(customers, agg)
	require.NoError(t, err)
	defer merged.Release()

	require.Equal(t, 3, merged.NumRows())

	values, err := merged.Floats("TotalValue")
	require.NoError(t, err)
	counts, err := merged.Ints("TransactionCount")
	require.NoError(t, err)

	// C2 has no transactions: zero-filled, never dropped.
	assert.Equal(t, 0.0, values.Value(1))
	assert.Equal(t, int64(0), counts.Value(1))
	assert.Equal(t, 100.0, values.Value(0))
	assert.Equal(t, 50.0, values.Value(2))
}

func TestMergeDropsUnmatchedTransactions(t *testing.T) {
	customers := makeCustomers([]string{"C1"}, []string{"Asia"}, []int64{2022})
	defer customers.Release()

	// The second transaction references a customer that does not exist.
	transactions := makeTransactions([]string{"C1", "C999"}, []float64{10, 99}, []int64{1, 1})
	defer transactions.Release()

	agg, err := AggregateTransactions(transactions)
	require.NoError(t, err)

	merged, err := Merge(customers, agg)
	require.NoError(t, err)
	defer merged.Release()

	require.Equal(t, 1, merged.NumRows())
	values, _ := merged.Floats("TotalValue")
	assert.Equal(t, 10.0, values.Value(0))
}

func TestMergeRowInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "customers")
		ids := make([]string, n)
		regions := make([]string, n)
		years := make([]int64, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("C%03d", i)
			regions[i] = rapid.SampledFrom([]string{"Asia", "Europe", "North America"}).Draw(t, "region")
			years[i] = rapid.Int64Range(2018, 2024).Draw(t, "year")
		}
		customers := makeCustomers(ids, regions, years)
		defer customers.Release()

		txCount := rapid.IntRange(0, 80).Draw(t, "transactions")
		txCustomers := make([]string, txCount)
		values := make([]float64, txCount)
		quantities := make([]int64, txCount)
		for i := range txCustomers {
			// Some keys intentionally match no customer.
			txCustomers[i] = fmt.Sprintf("C%03d", rapid.IntRange(0, n+5).Draw(t, "key"))
			values[i] = rapid.Float64Range(0, 500).Draw(t, "value")
			quantities[i] = rapid.Int64Range(0, 10).Draw(t, "quantity")
		}
		transactions := makeTransactions(txCustomers, values, quantities)
		defer transactions.Release()

		agg, err := AggregateTransactions(transactions)
		if err != nil {
			t.Fatalf("aggregate: %v", err)
		}
		merged, err := Merge(customers, agg)
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		defer merged.Release()

		// Exactly one merged row per customer, no matter the transactions.
		if merged.NumRows() != n {
			t.Fatalf("expected %d merged rows, got %d", n, merged.NumRows())
		}
	})
}

func TestSaveLoadTableRoundtrip(t *testing.T) {
	customers := makeCustomers([]string{"C1", "C2"}, []string{"Asia", "Europe"}, []int64{2022, 2023})
	defer customers.Release()

	merged, err := Merge(customers, nil)
	require.NoError(t, err)
	defer merged.Release()

	path := writeFile(t, "placeholder", "x")
	require.NoError(t, SaveTable(merged, path))

	loaded, err := LoadTable(path)
	require.NoError(t, err)
	defer loaded.Release()

	assert.Equal(t, merged.NumRows(), loaded.NumRows())
	assert.True(t, merged.Schema().Equal(loaded.Schema()))
}
