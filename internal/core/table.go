// Package core implements the consolidation engine: target schema
// management, column-mapping resolution, batch ingestion, segment
// management, and combined export. It has no HTTP dependencies and talks
// to persistence only through the store.Tabular contract.
package core

// Table is an ordered, stringly-typed tabular value: an explicit column
// list plus rows aligned to it. Every store read/write and every parsed
// upload moves through this type so the schema is always carried
// alongside the data instead of inferred ad hoc.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of name in the column list, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table carries the named column.
func (t Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the value at (row, column name), or "" when the row is
// short or the column is absent.
func (t Table) Cell(row int, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if idx >= len(r) {
		return ""
	}
	return r[idx]
}

// IsEmpty reports whether the table has no rows.
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// Clone returns a deep copy so callers can mutate freely.
func (t Table) Clone() Table {
	out := Table{Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// Append concatenates other below t, unioning the column sets. Columns
// keep t's order first, then other's new columns in their own order.
// Cells absent from a row's source table fill with "". The store schema
// only ever grows, so prior rows gain empty cells for later columns.
func (t Table) Append(other Table) Table {
	columns := append([]string(nil), t.Columns...)
	for _, c := range other.Columns {
		if !contains(columns, c) {
			columns = append(columns, c)
		}
	}

	out := Table{Columns: columns, Rows: make([][]string, 0, len(t.Rows)+len(other.Rows))}
	out.Rows = append(out.Rows, realign(t, columns)...)
	out.Rows = append(out.Rows, realign(other, columns)...)
	return out
}

// realign rewrites src's rows into the given column order.
func realign(src Table, columns []string) [][]string {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = src.ColumnIndex(c)
	}

	rows := make([][]string, len(src.Rows))
	for i, r := range src.Rows {
		row := make([]string, len(columns))
		for j, srcIdx := range idx {
			if srcIdx >= 0 && srcIdx < len(r) {
				row[j] = r[srcIdx]
			}
		}
		rows[i] = row
	}
	return rows
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
