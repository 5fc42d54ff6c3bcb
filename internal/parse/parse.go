// Package parse turns uploaded files into core.Table values. Column
// names are the literal header strings from the first row; all
// subsequent rows are values. Supported: comma-separated text and Excel
// workbooks (xlsx/xlsm, first sheet).
package parse

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/reportstack/consolidator/internal/core"
	"github.com/xuri/excelize/v2"
)

// ErrEmptyFile is returned for files with no header row at all.
var ErrEmptyFile = errors.New("file is empty")

// File parses data according to the uploaded filename's extension.
func File(filename string, data []byte) (core.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return CSV(data)
	case ".xlsx", ".xlsm":
		return Excel(data)
	default:
		return core.Table{}, fmt.Errorf("unsupported file type %q: upload a .csv or .xlsx file", filepath.Ext(filename))
	}
}

// CSV parses comma-separated text. Quoting is forgiving (LazyQuotes) and
// ragged rows are tolerated: short rows pad with "", long rows drop the
// cells beyond the header width.
func CSV(data []byte) (core.Table, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // UTF-8 BOM
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return core.Table{}, fmt.Errorf("parse csv: %w", err)
	}
	return shape(records)
}

// Excel parses the first worksheet of an xlsx/xlsm workbook.
func Excel(data []byte) (core.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return core.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return core.Table{}, errors.New("workbook has no worksheet")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return core.Table{}, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	return shape(rows)
}

// shape converts raw records into a Table: first row becomes the column
// list (trimmed), remaining rows align to its width.
func shape(records [][]string) (core.Table, error) {
	if len(records) == 0 {
		return core.Table{}, ErrEmptyFile
	}

	header := records[0]
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	t := core.Table{Columns: columns, Rows: make([][]string, 0, len(records)-1)}
	for _, rec := range records[1:] {
		row := make([]string, len(columns))
		for i := range columns {
			if i < len(rec) {
				row[i] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD so exports
// stay valid UTF-8 end to end.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}
