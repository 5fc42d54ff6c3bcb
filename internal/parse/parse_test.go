package parse

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCols []string
		wantRows [][]string
		wantErr  bool
	}{
		{
			name:     "plain header and rows",
			input:    "SKU,Qty\nA-1,5\nA-2,7\n",
			wantCols: []string{"SKU", "Qty"},
			wantRows: [][]string{{"A-1", "5"}, {"A-2", "7"}},
		},
		{
			name:     "header only",
			input:    "SKU,Qty\n",
			wantCols: []string{"SKU", "Qty"},
			wantRows: [][]string{},
		},
		{
			name:     "headers are trimmed",
			input:    " SKU , Qty \nA-1,5\n",
			wantCols: []string{"SKU", "Qty"},
			wantRows: [][]string{{"A-1", "5"}},
		},
		{
			name:     "short rows pad and long rows truncate",
			input:    "a,b\n1\n1,2,3\n",
			wantCols: []string{"a", "b"},
			wantRows: [][]string{{"1", ""}, {"1", "2"}},
		},
		{
			name:     "quoted values with embedded commas",
			input:    "Name,Qty\n\"Widget, large\",3\n",
			wantCols: []string{"Name", "Qty"},
			wantRows: [][]string{{"Widget, large", "3"}},
		},
		{
			name:     "UTF-8 BOM stripped from first header",
			input:    "\xef\xbb\xbfSKU,Qty\nA-1,5\n",
			wantCols: []string{"SKU", "Qty"},
			wantRows: [][]string{{"A-1", "5"}},
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CSV([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got.Columns, tt.wantCols) {
				t.Errorf("columns = %v, want %v", got.Columns, tt.wantCols)
			}
			if !reflect.DeepEqual(got.Rows, tt.wantRows) {
				t.Errorf("rows = %v, want %v", got.Rows, tt.wantRows)
			}
		})
	}
}

func TestCSVInvalidUTF8Sanitized(t *testing.T) {
	got, err := CSV([]byte("Name\ncaf\xe9\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Rows[0][0] != "caf�" {
		t.Errorf("cell = %q, want caf�", got.Rows[0][0])
	}
}

func TestExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"SKU", "Qty"},
		{"A-1", 5},
		{"A-2", 7},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := Excel(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Columns, []string{"SKU", "Qty"}) {
		t.Errorf("columns = %v", got.Columns)
	}
	if len(got.Rows) != 2 || got.Rows[0][0] != "A-1" || got.Rows[1][1] != "7" {
		t.Errorf("rows = %v", got.Rows)
	}
}

func TestFileDispatch(t *testing.T) {
	csvData := []byte("a\n1\n")

	if _, err := File("report.csv", csvData); err != nil {
		t.Errorf("File(.csv): %v", err)
	}
	if _, err := File("REPORT.CSV", csvData); err != nil {
		t.Errorf("File(.CSV): %v", err)
	}

	_, err := File("report.pdf", csvData)
	if err == nil {
		t.Fatal("File(.pdf): expected error")
	}
	if !strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("File(.pdf) error = %v", err)
	}
}
