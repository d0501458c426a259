package dataset

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// MergedSchema is the schema of the feature-ready table produced by Merge.
var MergedSchema = arrow.NewSchema([]arrow.Field{
	{Name: "CustomerID", Type: arrow.BinaryTypes.String},
	{Name: "Region", Type: arrow.BinaryTypes.String},
	{Name: "SignupDate", Type: arrow.BinaryTypes.String},
	{Name: "SignupYear", Type: arrow.PrimitiveTypes.Int64},
	{Name: "CustomerType", Type: arrow.BinaryTypes.String},
	{Name: "TotalValue", Type: arrow.PrimitiveTypes.Float64},
	{Name: "TransactionCount", Type: arrow.PrimitiveTypes.Int64},
	{Name: "TotalQuantity", Type: arrow.PrimitiveTypes.Int64},
}, nil)

// Merge left-joins the customers table with the transaction aggregates,
// producing exactly one row per customer. Customers without transactions get
// zero-filled aggregates; aggregates without a matching customer are dropped.
func Merge(customers *Table, agg map[string]Aggregate) (*Table, error) {
	ids, err := customers.Strings("CustomerID")
	if err != nil {
		return nil, err
	}
	regions, err := customers.Strings("Region")
	if err != nil {
		return nil, err
	}
	signups, err := customers.Strings("SignupDate")
	if err != nil {
		return nil, err
	}
	years, err := customers.Ints("SignupYear")
	if err != nil {
		return nil, err
	}
	types, err := customers.Strings("CustomerType")
	if err != nil {
		return nil, err
	}

	pool := memory.DefaultAllocator
	idB := array.NewStringBuilder(pool)
	regionB := array.NewStringBuilder(pool)
	signupB := array.NewStringBuilder(pool)
	yearB := array.NewInt64Builder(pool)
	typeB := array.NewStringBuilder(pool)
	valueB := array.NewFloat64Builder(pool)
	countB := array.NewInt64Builder(pool)
	quantityB := array.NewInt64Builder(pool)
	defer func() {
		for _, b := range []array.Builder{idB, regionB, signupB, yearB, typeB, valueB, countB, quantityB} {
			b.Release()
		}
	}()

	n := customers.NumRows()
	for i := 0; i < n; i++ {
		idB.Append(ids.Value(i))
		regionB.Append(regions.Value(i))
		signupB.Append(signups.Value(i))
		yearB.Append(years.Value(i))
		typeB.Append(types.Value(i))

		a := agg[ids.Value(i)] // zero value when the customer has no transactions
		valueB.Append(a.TotalValue)
		countB.Append(a.TransactionCount)
		quantityB.Append(a.TotalQuantity)
	}

	cols := []arrow.Array{
		idB.NewArray(), regionB.NewArray(), signupB.NewArray(), yearB.NewArray(),
		typeB.NewArray(), valueB.NewArray(), countB.NewArray(), quantityB.NewArray(),
	}
	rec := array.NewRecord(MergedSchema, cols, int64(n))
	for _, c := range cols {
		c.Release()
	}
	return NewTable(rec), nil
}

// MergeFull inner-joins transactions with customers and products on their
// respective keys. It backs the EDA insight aggregations; transactions whose
// customer or product key has no match are dropped.
func MergeFull(transactions, customers, products *Table) (*Table, error) {
	txIDs, err := transactions.Strings("TransactionID")
	if err != nil {
		return nil, err
	}
	txCustomers, err := transactions.Strings("CustomerID")
	if err != nil {
		return nil, err
	}
	txProducts, err := transactions.Strings("ProductID")
	if err != nil {
		return nil, err
	}
	txDates, err := transactions.Strings("TransactionDate")
	if err != nil {
		return nil, err
	}
	txQuantities, err := transactions.Ints("Quantity")
	if err != nil {
		return nil, err
	}
	txValues, err := transactions.Floats("TotalValue")
	if err != nil {
		return nil, err
	}

	customerRow, err := rowIndex(customers, "CustomerID")
	if err != nil {
		return nil, err
	}
	productRow, err := rowIndex(products, "ProductID")
	if err != nil {
		return nil, err
	}

	regions, _ := customers.Strings("Region")
	years, _ := customers.Ints("SignupYear")
	ctypes, _ := customers.Strings("CustomerType")
	names, _ := products.Strings("ProductName")
	categories, _ := products.Strings("Category")

	pool := memory.DefaultAllocator
	builders := struct {
		txID, customerID, productID, date          *array.StringBuilder
		quantity                                   *array.Int64Builder
		value                                      *array.Float64Builder
		region, ctype, name, category              *array.StringBuilder
		year                                       *array.Int64Builder
	}{
		txID: array.NewStringBuilder(pool), customerID: array.NewStringBuilder(pool),
		productID: array.NewStringBuilder(pool), date: array.NewStringBuilder(pool),
		quantity: array.NewInt64Builder(pool), value: array.NewFloat64Builder(pool),
		region: array.NewStringBuilder(pool), ctype: array.NewStringBuilder(pool),
		name: array.NewStringBuilder(pool), category: array.NewStringBuilder(pool),
		year: array.NewInt64Builder(pool),
	}

	rows := int64(0)
	for i := 0; i < transactions.NumRows(); i++ {
		ci, ok := customerRow[txCustomers.Value(i)]
		if !ok {
			continue
		}
		pi, ok := productRow[txProducts.Value(i)]
		if !ok {
			continue
		}
		builders.txID.Append(txIDs.Value(i))
		builders.customerID.Append(txCustomers.Value(i))
		builders.productID.Append(txProducts.Value(i))
		builders.date.Append(txDates.Value(i))
		builders.quantity.Append(txQuantities.Value(i))
		builders.value.Append(txValues.Value(i))
		builders.region.Append(regions.Value(ci))
		builders.year.Append(years.Value(ci))
		builders.ctype.Append(ctypes.Value(ci))
		builders.name.Append(names.Value(pi))
		builders.category.Append(categories.Value(pi))
		rows++
	}

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "TransactionID", Type: arrow.BinaryTypes.String},
		{Name: "CustomerID", Type: arrow.BinaryTypes.String},
		{Name: "ProductID", Type: arrow.BinaryTypes.String},
		{Name: "TransactionDate", Type: arrow.BinaryTypes.String},
		{Name: "Quantity", Type: arrow.PrimitiveTypes.Int64},
		{Name: "TotalValue", Type: arrow.PrimitiveTypes.Float64},
		{Name: "Region", Type: arrow.BinaryTypes.String},
		{Name: "SignupYear", Type: arrow.PrimitiveTypes.Int64},
		{Name: "CustomerType", Type: arrow.BinaryTypes.String},
		{Name: "ProductName", Type: arrow.BinaryTypes.String},
		{Name: "Category", Type: arrow.BinaryTypes.String},
	}, nil)

	cols := []arrow.Array{
		builders.txID.NewArray(), builders.customerID.NewArray(), builders.productID.NewArray(),
		builders.date.NewArray(), builders.quantity.NewArray(), builders.value.NewArray(),
		builders.region.NewArray(), builders.year.NewArray(), builders.ctype.NewArray(),
		builders.name.NewArray(), builders.category.NewArray(),
	}
	rec := array.NewRecord(schema, cols, rows)
	for _, c := range cols {
		c.Release()
	}
	for _, b := range []array.Builder{
		builders.txID, builders.customerID, builders.productID, builders.date,
		builders.quantity, builders.value, builders.region, builders.ctype,
		builders.name, builders.category, builders.year,
	} {
		b.Release()
	}
	return NewTable(rec), nil
}

// rowIndex maps each key value to its row position, first occurrence wins.
func rowIndex(t *Table, key string) (map[string]int, error) {
	keys, err := t.Strings(key)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		if _, seen := idx[keys.Value(i)]; !seen {
			idx[keys.Value(i)] = i
		}
	}
	return idx, nil
}
