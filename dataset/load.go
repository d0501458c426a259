package dataset

import (
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Required input columns, exactly as they appear in the CSV headers.
var (
	customerColumns    = []string{"CustomerID", "Region", "SignupDate"}
	transactionColumns = []string{"TransactionID", "CustomerID", "ProductID", "TransactionDate", "Quantity", "TotalValue"}
	productColumns     = []string{"ProductID", "ProductName", "Category"}
)

// Date layouts accepted for SignupDate and TransactionDate.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02-01-2006",
}

func parseDate(value string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// readCSV reads an entire CSV file into a single Arrow record. Column types
// listed in types are pinned; the rest are inferred.
func readCSV(path string, types map[string]arrow.DataType) (arrow.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewInferringReader(f,
		csv.WithHeader(true),
		csv.WithChunk(-1),
		csv.WithColumnTypes(types),
		csv.WithNullReader(true, ""),
	)
	defer r.Release()

	if !r.Next() {
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("dataset: read %s: %w", path, err)
		}
		return nil, fmt.Errorf("dataset: read %s: empty file", path)
	}
	rec := r.Record()
	rec.Retain()
	return rec, nil
}

func requireColumns(rec arrow.Record, file string, required []string) error {
	for _, name := range required {
		if len(rec.Schema().FieldIndices(name)) == 0 {
			return &SchemaError{File: file, Column: name}
		}
	}
	return nil
}

// LoadCustomers reads the customers CSV and derives SignupYear from
// SignupDate. A missing CustomerType column is filled with "Unknown"; an
// unparseable SignupDate is a fatal ParseError.
func LoadCustomers(path string) (*Table, error) {
	raw, err := readCSV(path, map[string]arrow.DataType{
		"CustomerID":   arrow.BinaryTypes.String,
		"Region":       arrow.BinaryTypes.String,
		"SignupDate":   arrow.BinaryTypes.String,
		"CustomerType": arrow.BinaryTypes.String,
	})
	if err != nil {
		return nil, err
	}
	defer raw.Release()

	if err := requireColumns(raw, path, customerColumns); err != nil {
		return nil, err
	}

	src := NewTable(raw)
	ids, _ := src.Strings("CustomerID")
	regions, _ := src.Strings("Region")
	signups, _ := src.Strings("SignupDate")

	var types *array.String
	if src.HasColumn("CustomerType") {
		types, _ = src.Strings("CustomerType")
	}

	pool := memory.DefaultAllocator
	idB := array.NewStringBuilder(pool)
	regionB := array.NewStringBuilder(pool)
	signupB := array.NewStringBuilder(pool)
	yearB := array.NewInt64Builder(pool)
	typeB := array.NewStringBuilder(pool)
	defer func() {
		for _, b := range []array.Builder{idB, regionB, signupB, yearB, typeB} {
			b.Release()
		}
	}()

	n := src.NumRows()
	for i := 0; i < n; i++ {
		date, err := parseDate(signups.Value(i))
		if err != nil {
			return nil, &ParseError{File: path, Column: "SignupDate", Row: i, Value: signups.Value(i), Err: err}
		}
		idB.Append(ids.Value(i))
		regionB.Append(regions.Value(i))
		signupB.Append(signups.Value(i))
		yearB.Append(int64(date.Year()))
		if types != nil && !types.IsNull(i) && types.Value(i) != "" {
			typeB.Append(types.Value(i))
		} else {
			typeB.Append("Unknown")
		}
	}

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "CustomerID", Type: arrow.BinaryTypes.String},
		{Name: "Region", Type: arrow.BinaryTypes.String},
		{Name: "SignupDate", Type: arrow.BinaryTypes.String},
		{Name: "SignupYear", Type: arrow.PrimitiveTypes.Int64},
		{Name: "CustomerType", Type: arrow.BinaryTypes.String},
	}, nil)

	cols := []arrow.Array{
		idB.NewArray(), regionB.NewArray(), signupB.NewArray(), yearB.NewArray(), typeB.NewArray(),
	}
	rec := array.NewRecord(schema, cols, int64(n))
	for _, c := range cols {
		c.Release()
	}
	return NewTable(rec), nil
}

// LoadTransactions reads the transactions CSV. Quantity is pinned to int64
// and TotalValue to float64 so downstream aggregation never re-parses.
func LoadTransactions(path string) (*Table, error) {
	rec, err := readCSV(path, map[string]arrow.DataType{
		"TransactionID":   arrow.BinaryTypes.String,
		"CustomerID":      arrow.BinaryTypes.String,
		"ProductID":       arrow.BinaryTypes.String,
		"TransactionDate": arrow.BinaryTypes.String,
		"Quantity":        arrow.PrimitiveTypes.Int64,
		"TotalValue":      arrow.PrimitiveTypes.Float64,
	})
	if err != nil {
		return nil, err
	}
	if err := requireColumns(rec, path, transactionColumns); err != nil {
		rec.Release()
		return nil, err
	}
	return NewTable(rec), nil
}

// LoadProducts reads the products CSV. Products feed the EDA path only.
func LoadProducts(path string) (*Table, error) {
	rec, err := readCSV(path, map[string]arrow.DataType{
		"ProductID":   arrow.BinaryTypes.String,
		"ProductName": arrow.BinaryTypes.String,
		"Category":    arrow.BinaryTypes.String,
	})
	if err != nil {
		return nil, err
	}
	if err := requireColumns(rec, path, productColumns); err != nil {
		rec.Release()
		return nil, err
	}
	return NewTable(rec), nil
}
