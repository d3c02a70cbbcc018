package load

import (
	"strings"
)

// Table is a column-ordered text dataset. Empty cells are nulls.
type Table struct {
	Columns []string
	Rows    [][]string
}

func NewTable(columns ...string) Table {
	return Table{Columns: columns}
}

// Index returns the position of a column or -1.
func (t Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

func (t Table) HasColumn(column string) bool {
	return t.Index(column) >= 0
}

func (t Table) Len() int {
	return len(t.Rows)
}

// Value returns the cell of row i in column, or "" when the column is absent.
func (t Table) Value(i int, column string) string {
	j := t.Index(column)
	if j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// Column returns every cell of a column, or nil when it is absent.
func (t Table) Column(column string) []string {
	j := t.Index(column)
	if j < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if j < len(row) {
			out[i] = row[j]
		}
	}
	return out
}

// Project returns a table with exactly the given columns; absent columns are null.
func (t Table) Project(columns ...string) Table {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.Index(c)
	}
	out := Table{Columns: append([]string(nil), columns...), Rows: make([][]string, len(t.Rows))}
	for r, row := range t.Rows {
		projected := make([]string, len(columns))
		for i, j := range idx {
			if j >= 0 && j < len(row) {
				projected[i] = row[j]
			}
		}
		out.Rows[r] = projected
	}
	return out
}

// IsNull reports whether a cell counts as missing.
func IsNull(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "nan")
}

// NullCounts counts missing cells per column.
func (t Table) NullCounts() map[string]int {
	counts := make(map[string]int, len(t.Columns))
	for _, c := range t.Columns {
		counts[c] = 0
	}
	for _, row := range t.Rows {
		for j, c := range t.Columns {
			if j >= len(row) || IsNull(row[j]) {
				counts[c]++
			}
		}
	}
	return counts
}

// Concat concatenates tables in order. The columns of the result are the
// ordered union of the input columns; cells of missing columns are null.
func Concat(tables ...Table) Table {
	var columns []string
	seen := make(map[string]bool)
	total := 0
	for _, t := range tables {
		total += len(t.Rows)
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	out := Table{Columns: columns, Rows: make([][]string, 0, total)}
	for _, t := range tables {
		out.Rows = append(out.Rows, t.Project(columns...).Rows...)
	}
	return out
}

// RemoveDuplicateRows keeps the first occurrence of every fully identical row.
func RemoveDuplicateRows(t Table) (Table, int) {
	out := Table{Columns: t.Columns}
	seen := make(map[string]bool, len(t.Rows))
	removed := 0
	for _, row := range t.Rows {
		key := strings.Join(row, "\x00")
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		out.Rows = append(out.Rows, row)
	}
	return out, removed
}
