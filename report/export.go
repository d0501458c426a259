package report

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/cluster"
	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/dataset"
)

// WriteAnnotatedCSV writes the merged table with one appended
// "{Name}_Cluster" column per successful algorithm. Failed algorithms
// contribute no column at all.
func WriteAnnotatedCSV(merged *dataset.Table, results []cluster.Result, path string) error {
	rec := merged.Record()
	fields := append([]arrow.Field{}, rec.Schema().Fields()...)
	cols := make([]arrow.Array, int(rec.NumCols()), int(rec.NumCols())+len(results))
	for i := range cols {
		cols[i] = rec.Column(i)
	}

	pool := memory.DefaultAllocator
	var added []arrow.Array
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		b := array.NewInt64Builder(pool)
		for _, l := range res.Labels {
			b.Append(int64(l))
		}
		arr := b.NewArray()
		b.Release()
		added = append(added, arr)
		cols = append(cols, arr)
		fields = append(fields, arrow.Field{
			Name: res.Name + "_Cluster",
			Type: arrow.PrimitiveTypes.Int64,
		})
	}
	defer func() {
		for _, a := range added {
			a.Release()
		}
	}()

	out := array.NewRecord(arrow.NewSchema(fields, nil), cols, rec.NumRows())
	defer out.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f, out.Schema(), csv.WithHeader(true))
	if err := w.Write(out); err != nil {
		return fmt.Errorf("report: write csv: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("report: flush csv: %w", err)
	}
	return w.Error()
}
