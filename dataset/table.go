// Package dataset loads the customer, product, and transaction CSVs into
// Arrow records and derives the denormalized table the feature builder
// consumes: one row per customer, transaction aggregates zero-filled.
package dataset

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Table wraps a single Arrow record batch and provides name-based typed
// column access. The record is treated as read-only after construction.
type Table struct {
	rec arrow.Record
}

// NewTable takes ownership of rec.
func NewTable(rec arrow.Record) *Table {
	return &Table{rec: rec}
}

// Record returns the underlying Arrow record.
func (t *Table) Record() arrow.Record { return t.rec }

// Schema returns the record schema.
func (t *Table) Schema() *arrow.Schema { return t.rec.Schema() }

// NumRows returns the row count.
func (t *Table) NumRows() int { return int(t.rec.NumRows()) }

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	return len(t.rec.Schema().FieldIndices(name)) > 0
}

// Release releases the underlying record.
func (t *Table) Release() {
	if t.rec != nil {
		t.rec.Release()
		t.rec = nil
	}
}

func (t *Table) column(name string) (arrow.Array, error) {
	indices := t.rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return nil, fmt.Errorf("dataset: no column %q", name)
	}
	return t.rec.Column(indices[0]), nil
}

// Strings returns the named column as a string array.
func (t *Table) Strings(name string) (*array.String, error) {
	col, err := t.column(name)
	if err != nil {
		return nil, err
	}
	arr, ok := col.(*array.String)
	if !ok {
		return nil, fmt.Errorf("dataset: column %q: unexpected type %T", name, col)
	}
	return arr, nil
}

// Ints returns the named column as an int64 array.
func (t *Table) Ints(name string) (*array.Int64, error) {
	col, err := t.column(name)
	if err != nil {
		return nil, err
	}
	arr, ok := col.(*array.Int64)
	if !ok {
		return nil, fmt.Errorf("dataset: column %q: unexpected type %T", name, col)
	}
	return arr, nil
}

// Floats returns the named column as a float64 array.
func (t *Table) Floats(name string) (*array.Float64, error) {
	col, err := t.column(name)
	if err != nil {
		return nil, err
	}
	arr, ok := col.(*array.Float64)
	if !ok {
		return nil, fmt.Errorf("dataset: column %q: unexpected type %T", name, col)
	}
	return arr, nil
}
