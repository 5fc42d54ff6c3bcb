package core

import (
	"reflect"
	"testing"
)

func TestTableAppend(t *testing.T) {
	tests := []struct {
		name     string
		base     Table
		other    Table
		wantCols []string
		wantRows [][]string
	}{
		{
			name:     "same columns concatenate",
			base:     Table{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}},
			other:    Table{Columns: []string{"a", "b"}, Rows: [][]string{{"3", "4"}}},
			wantCols: []string{"a", "b"},
			wantRows: [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:     "new columns union at the end",
			base:     Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}},
			other:    Table{Columns: []string{"a", "b"}, Rows: [][]string{{"2", "3"}}},
			wantCols: []string{"a", "b"},
			wantRows: [][]string{{"1", ""}, {"2", "3"}},
		},
		{
			name:     "append to empty table adopts columns",
			base:     Table{},
			other:    Table{Columns: []string{"x", "y"}, Rows: [][]string{{"1", "2"}}},
			wantCols: []string{"x", "y"},
			wantRows: [][]string{{"1", "2"}},
		},
		{
			name:     "disjoint columns realign both sides",
			base:     Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}},
			other:    Table{Columns: []string{"b"}, Rows: [][]string{{"2"}}},
			wantCols: []string{"a", "b"},
			wantRows: [][]string{{"1", ""}, {"", "2"}},
		},
		{
			name:     "other column order does not leak into result",
			base:     Table{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}},
			other:    Table{Columns: []string{"b", "a"}, Rows: [][]string{{"3", "4"}}},
			wantCols: []string{"a", "b"},
			wantRows: [][]string{{"1", "2"}, {"4", "3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.base.Append(tt.other)
			if !reflect.DeepEqual(got.Columns, tt.wantCols) {
				t.Errorf("columns = %v, want %v", got.Columns, tt.wantCols)
			}
			if !reflect.DeepEqual(got.Rows, tt.wantRows) {
				t.Errorf("rows = %v, want %v", got.Rows, tt.wantRows)
			}
		})
	}
}

func TestTableCell(t *testing.T) {
	tbl := Table{
		Columns: []string{"a", "b"},
		Rows:    [][]string{{"1", "2"}, {"3"}},
	}

	tests := []struct {
		name   string
		row    int
		column string
		want   string
	}{
		{"existing cell", 0, "b", "2"},
		{"short row pads empty", 1, "b", ""},
		{"unknown column", 0, "zzz", ""},
		{"row out of range", 5, "a", ""},
		{"negative row", -1, "a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tbl.Cell(tt.row, tt.column); got != tt.want {
				t.Errorf("Cell(%d, %q) = %q, want %q", tt.row, tt.column, got, tt.want)
			}
		})
	}
}

func TestTableCloneIsDeep(t *testing.T) {
	orig := Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}
	clone := orig.Clone()
	clone.Columns[0] = "changed"
	clone.Rows[0][0] = "changed"

	if orig.Columns[0] != "a" || orig.Rows[0][0] != "1" {
		t.Errorf("Clone shares memory with original: %v", orig)
	}
}
