package storage

import (
	"fmt"
	"strings"
)

// CheckRows verifies that every row has exactly one value per column.
func CheckRows(columns []string, rows [][]any) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns")
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(r), len(columns))
		}
	}
	return nil
}

// RowsPerStatement returns how many rows of width columns fit in one
// statement under a bind-parameter limit. The result is at least 1.
func RowsPerStatement(maxParams, columns int) int {
	if columns <= 0 {
		return 1
	}
	n := maxParams / columns
	if n < 1 {
		return 1
	}
	return n
}

// EachChunk calls fn with consecutive sub-slices of rows of at most size rows,
// stopping at the first error.
func EachChunk(rows [][]any, size int, fn func(part [][]any) error) error {
	if size < 1 {
		size = 1
	}
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		if err := fn(rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// DedupeRowsByColumns keeps the first row for each distinct combination of
// the key columns, preserving order.
func DedupeRowsByColumns(rows [][]any, columns []string, keyColumns []string) ([][]any, error) {
	idx := make([]int, 0, len(keyColumns))
	for _, k := range keyColumns {
		pos := -1
		for i, c := range columns {
			if c == k {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil, fmt.Errorf("dedupe column %q not present in columns", k)
		}
		idx = append(idx, pos)
	}

	seen := make(map[string]struct{}, len(rows))
	out := make([][]any, 0, len(rows))
	var b strings.Builder
	for _, r := range rows {
		b.Reset()
		for _, i := range idx {
			fmt.Fprintf(&b, "%T:%v\x1f", r[i], r[i])
		}
		k := b.String()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}
