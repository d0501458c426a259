// Package eda renders the exploratory analysis: ten business-insight charts
// over the fully merged transactions table, compiled into a PDF alongside
// the merged CSV export.
package eda

import (
	"sort"
	"strconv"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/dataset"
)

// series is an ordered key/value aggregation result.
type series struct {
	Keys   []string
	Values []float64
}

// groupSum sums a float column grouped by a string key column.
func groupSum(t *dataset.Table, key, value string) (*series, error) {
	keys, err := t.Strings(key)
	if err != nil {
		return nil, err
	}
	vals, err := t.Floats(value)
	if err != nil {
		return nil, err
	}
	sums := make(map[string]float64)
	for i := 0; i < t.NumRows(); i++ {
		sums[keys.Value(i)] += vals.Value(i)
	}
	return sortedSeries(sums), nil
}

// groupSumInt sums an int column grouped by a string key column.
func groupSumInt(t *dataset.Table, key, value string) (*series, error) {
	keys, err := t.Strings(key)
	if err != nil {
		return nil, err
	}
	vals, err := t.Ints(value)
	if err != nil {
		return nil, err
	}
	sums := make(map[string]float64)
	for i := 0; i < t.NumRows(); i++ {
		sums[keys.Value(i)] += float64(vals.Value(i))
	}
	return sortedSeries(sums), nil
}

// perCustomer aggregates TotalValue per customer; mean toggles between
// lifetime sum and average order value.
func perCustomer(t *dataset.Table, mean bool) ([]float64, error) {
	keys, err := t.Strings("CustomerID")
	if err != nil {
		return nil, err
	}
	vals, err := t.Floats("TotalValue")
	if err != nil {
		return nil, err
	}
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := 0; i < t.NumRows(); i++ {
		sums[keys.Value(i)] += vals.Value(i)
		counts[keys.Value(i)]++
	}
	ids := make([]string, 0, len(sums))
	for id := range sums {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]float64, len(ids))
	for i, id := range ids {
		if mean {
			out[i] = sums[id] / float64(counts[id])
		} else {
			out[i] = sums[id]
		}
	}
	return out, nil
}

// transactionCounts returns the per-customer transaction count distribution.
func transactionCounts(t *dataset.Table) ([]float64, error) {
	keys, err := t.Strings("CustomerID")
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for i := 0; i < t.NumRows(); i++ {
		counts[keys.Value(i)]++
	}
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]float64, len(ids))
	for i, id := range ids {
		out[i] = float64(counts[id])
	}
	return out, nil
}

// monthlyRevenue sums TotalValue by transaction month ("2006-01" keys).
func monthlyRevenue(t *dataset.Table) (*series, error) {
	dates, err := t.Strings("TransactionDate")
	if err != nil {
		return nil, err
	}
	vals, err := t.Floats("TotalValue")
	if err != nil {
		return nil, err
	}
	sums := make(map[string]float64)
	for i := 0; i < t.NumRows(); i++ {
		d := dates.Value(i)
		if len(d) < 7 {
			continue
		}
		sums[d[:7]] += vals.Value(i)
	}
	return sortedSeries(sums), nil
}

// signupYearRevenue sums TotalValue by the customer's signup year.
func signupYearRevenue(t *dataset.Table) (*series, error) {
	return groupSumByInt(t, "SignupYear", "TotalValue")
}

func groupSumByInt(t *dataset.Table, key, value string) (*series, error) {
	keys, err := t.Ints(key)
	if err != nil {
		return nil, err
	}
	vals, err := t.Floats(value)
	if err != nil {
		return nil, err
	}
	sums := make(map[int64]float64)
	for i := 0; i < t.NumRows(); i++ {
		sums[keys.Value(i)] += vals.Value(i)
	}
	ks := make([]int64, 0, len(sums))
	for k := range sums {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(a, b int) bool { return ks[a] < ks[b] })
	s := &series{}
	for _, k := range ks {
		s.Keys = append(s.Keys, strconv.FormatInt(k, 10))
		s.Values = append(s.Values, sums[k])
	}
	return s, nil
}

// topN keeps the n largest entries, ordered descending.
func (s *series) topN(n int) *series {
	type kv struct {
		k string
		v float64
	}
	pairs := make([]kv, len(s.Keys))
	for i := range s.Keys {
		pairs[i] = kv{s.Keys[i], s.Values[i]}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].v > pairs[b].v })
	if n > len(pairs) {
		n = len(pairs)
	}
	out := &series{}
	for _, p := range pairs[:n] {
		out.Keys = append(out.Keys, p.k)
		out.Values = append(out.Values, p.v)
	}
	return out
}

func sortedSeries(sums map[string]float64) *series {
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := &series{}
	for _, k := range keys {
		s.Keys = append(s.Keys, k)
		s.Values = append(s.Values, sums[k])
	}
	return s
}

