package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
)

// Export reads the master worksheet and serializes the union of the
// selected batches' rows as CSV, projected onto the target fields.
func (s *Service) Export(ctx context.Context, batchIDs []string, fields []string) ([]byte, error) {
	master, err := s.store.Read(ctx, WorksheetMaster)
	if err != nil {
		return nil, err
	}
	return ExportCSV(master, batchIDs, fields)
}

// ExportCSV filters master's rows to the given batch ids (keeping master
// row order, not selection order) and projects them onto the target
// fields in schema order.
//
// Only fields actually populated for this batch set make it into the
// output; a field with no value in any selected row is silently omitted
// rather than padded. The store's schema grows monotonically, so older
// batches simply lack columns added later.
//
// Output is header-row-first UTF-8 CSV with standard quoting.
func ExportCSV(master Table, batchIDs []string, fields []string) ([]byte, error) {
	ids := make(map[string]bool, len(batchIDs))
	for _, id := range batchIDs {
		ids[id] = true
	}

	var rowIdx []int
	for i := range master.Rows {
		if ids[master.Cell(i, TagBatchID)] {
			rowIdx = append(rowIdx, i)
		}
	}

	columns := presentFields(master, rowIdx, fields)
	if len(columns) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}
	record := make([]string, len(columns))
	for _, i := range rowIdx {
		for j, col := range columns {
			record[j] = master.Cell(i, col)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush export: %w", err)
	}
	return buf.Bytes(), nil
}

// presentFields returns the target fields, in schema order, that exist
// in master and carry at least one non-empty value among the selected
// rows.
func presentFields(master Table, rowIdx []int, fields []string) []string {
	var out []string
	for _, field := range fields {
		if !master.HasColumn(field) {
			continue
		}
		for _, i := range rowIdx {
			if master.Cell(i, field) != "" {
				out = append(out, field)
				break
			}
		}
	}
	return out
}
