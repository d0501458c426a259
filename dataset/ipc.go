package dataset

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// SaveTable writes a table to disk in the Arrow IPC file format. Used for the
// optional merged-table snapshot artifact.
func SaveTable(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %q: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	w, err := ipc.NewFileWriter(f,
		ipc.WithSchema(t.Schema()),
		ipc.WithAllocator(memory.DefaultAllocator),
	)
	if err != nil {
		return fmt.Errorf("dataset: create Arrow file writer: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	if err := w.Write(t.Record()); err != nil {
		return fmt.Errorf("dataset: write record: %w", err)
	}
	return nil
}

// LoadTable reads a table previously written with SaveTable.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("dataset: create Arrow file reader: %w", err)
	}
	defer func() {
		_ = r.Close()
	}()

	if r.NumRecords() == 0 {
		return nil, fmt.Errorf("dataset: %q: no records", path)
	}
	rec, err := r.RecordAt(0)
	if err != nil {
		return nil, fmt.Errorf("dataset: read record: %w", err)
	}
	rec.Retain()
	return NewTable(rec), nil
}
