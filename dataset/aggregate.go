package dataset

// Aggregate is the per-customer rollup of the transactions table.
type Aggregate struct {
	TotalValue       float64
	TransactionCount int64
	TotalQuantity    int64
}

// AggregateTransactions groups the transactions table by CustomerID and sums
// TotalValue and Quantity while counting rows. Rows with a null or empty
// CustomerID contribute nothing.
func AggregateTransactions(transactions *Table) (map[string]Aggregate, error) {
	ids, err := transactions.Strings("CustomerID")
	if err != nil {
		return nil, err
	}
	values, err := transactions.Floats("TotalValue")
	if err != nil {
		return nil, err
	}
	quantities, err := transactions.Ints("Quantity")
	if err != nil {
		return nil, err
	}

	out := make(map[string]Aggregate)
	for i := 0; i < transactions.NumRows(); i++ {
		if ids.IsNull(i) || ids.Value(i) == "" {
			continue
		}
		agg := out[ids.Value(i)]
		if !values.IsNull(i) {
			agg.TotalValue += values.Value(i)
		}
		if !quantities.IsNull(i) {
			agg.TotalQuantity += quantities.Value(i)
		}
		agg.TransactionCount++
		out[ids.Value(i)] = agg
	}
	return out, nil
}
