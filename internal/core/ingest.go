package core

import (
	"context"
	"fmt"
	"time"
)

// Batch describes one ingested file's rows after mapping, as stamped
// into the master worksheet.
type Batch struct {
	ID          string    `json:"batch_id"`
	DisplayName string    `json:"file_display_name"`
	UploadTime  time.Time `json:"upload_time"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	Rows        int       `json:"rows"`
}

// Ingest applies a resolved mapping to a parsed source table and appends
// the result to the master worksheet.
//
// Only source columns selected by the mapping survive; they are renamed
// to their target field names, walking fields in schema order. Mapping
// entries whose source column is not in src resolve to unmapped rather
// than failing. If nothing at all is mapped, ErrNoColumnsMapped is
// returned and the store is untouched.
//
// The append is a read-modify-write of the whole worksheet and is
// serialized against other Service mutations by the internal mutex.
func (s *Service) Ingest(ctx context.Context, src Table, fields []string, mapping ColumnMapping, displayName, uploader string) (*Batch, error) {
	projected := project(src, fields, mapping)
	if len(projected.Columns) == 0 {
		return nil, fmt.Errorf("ingest %q: %w", displayName, ErrNoColumnsMapped)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.seq++
	batch := &Batch{
		ID:          fmt.Sprintf("ID_%s_%d", now.Format("20060102150405"), s.seq),
		DisplayName: displayName,
		UploadTime:  now,
		UploadedBy:  uploader,
		Rows:        len(projected.Rows),
	}

	stamped := stampTags(projected, batch)

	master, err := s.store.Read(ctx, WorksheetMaster)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(ctx, WorksheetMaster, master.Append(stamped)); err != nil {
		return nil, err
	}
	return batch, nil
}

// project filters src to the mapped source columns and renames them to
// their target field names, in schema order. Two targets mapped to the
// same source column each get their own copy of it.
func project(src Table, fields []string, mapping ColumnMapping) Table {
	var out Table
	var srcIdx []int
	for _, field := range fields {
		source := mapping[field]
		if source == "" {
			continue
		}
		idx := src.ColumnIndex(source)
		if idx < 0 {
			// Source column vanished since the mapping was resolved.
			continue
		}
		out.Columns = append(out.Columns, field)
		srcIdx = append(srcIdx, idx)
	}
	if len(out.Columns) == 0 {
		return out
	}

	out.Rows = make([][]string, len(src.Rows))
	for i, r := range src.Rows {
		row := make([]string, len(out.Columns))
		for j, idx := range srcIdx {
			if idx < len(r) {
				row[j] = r[idx]
			}
		}
		out.Rows[i] = row
	}
	return out
}

// stampTags appends the batch tag columns to every row.
func stampTags(t Table, b *Batch) Table {
	out := Table{
		Columns: append(append([]string(nil), t.Columns...), TagBatchID, TagUploadTime, TagDisplayName, TagUploadedBy),
		Rows:    make([][]string, len(t.Rows)),
	}
	uploadTime := b.UploadTime.Format(uploadTimeFormat)
	for i, r := range t.Rows {
		out.Rows[i] = append(append([]string(nil), r...), b.ID, uploadTime, b.DisplayName, b.UploadedBy)
	}
	return out
}
