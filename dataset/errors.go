package dataset

import "fmt"

// SchemaError reports a required column missing from an input file. It is
// fatal: the pipeline aborts before any clustering work starts.
type SchemaError struct {
	File   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset: %s: required column %q not found", e.File, e.Column)
}

// ParseError reports an unparseable cell value, typically a date. It is fatal
// and carries enough context to identify the offending input.
type ParseError struct {
	File   string
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dataset: %s: row %d column %q: cannot parse %q: %v",
		e.File, e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
