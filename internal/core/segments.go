package core

import (
	"context"
	"fmt"
)

// ListBatches groups the master worksheet's rows by batch id and returns
// one entry per batch, in order of first appearance, carrying the first
// row's tag values. A master worksheet without the batch_id column (or
// with no rows) yields an empty list.
func (s *Service) ListBatches(ctx context.Context) ([]Batch, error) {
	master, err := s.store.Read(ctx, WorksheetMaster)
	if err != nil {
		return nil, err
	}
	return groupBatches(master), nil
}

func groupBatches(master Table) []Batch {
	if !master.HasColumn(TagBatchID) {
		return nil
	}

	var batches []Batch
	index := make(map[string]int)
	for i := range master.Rows {
		id := master.Cell(i, TagBatchID)
		if id == "" {
			continue
		}
		if at, seen := index[id]; seen {
			batches[at].Rows++
			continue
		}
		index[id] = len(batches)
		b := Batch{
			ID:          id,
			DisplayName: master.Cell(i, TagDisplayName),
			UploadedBy:  master.Cell(i, TagUploadedBy),
			Rows:        1,
		}
		if raw := master.Cell(i, TagUploadTime); raw != "" {
			if ts, err := parseUploadTime(raw); err == nil {
				b.UploadTime = ts
			}
		}
		batches = append(batches, b)
	}
	return batches
}

// DeleteBatch removes every master row tagged with batchID and writes
// back the remainder. An unknown id is a no-op: the store is not
// rewritten, so the operation leaves it byte-for-byte unchanged.
func (s *Service) DeleteBatch(ctx context.Context, batchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	master, err := s.store.Read(ctx, WorksheetMaster)
	if err != nil {
		return err
	}

	remaining, removed := splitByBatch(master, map[string]bool{batchID: true})
	if len(removed.Rows) == 0 {
		return nil
	}
	return s.store.Write(ctx, WorksheetMaster, remaining)
}

// ArchiveBatches moves every row of the given batches from the master
// worksheet to the archive worksheet.
//
// This is two sequential whole-table writes with no transaction spanning
// them. If the archive write fails, nothing has moved and the master is
// intact. If the master write fails after the archive write succeeded,
// the rows exist in both worksheets; that and any count mismatch found
// when verifying afterwards surface as *PartialArchiveError so an
// operator can reconcile instead of the condition being swallowed.
func (s *Service) ArchiveBatches(ctx context.Context, batchIDs []string) error {
	if len(batchIDs) == 0 {
		return nil
	}
	ids := make(map[string]bool, len(batchIDs))
	for _, id := range batchIDs {
		ids[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	master, err := s.store.Read(ctx, WorksheetMaster)
	if err != nil {
		return err
	}
	remaining, moved := splitByBatch(master, ids)
	if len(moved.Rows) == 0 {
		return nil
	}

	archive, err := s.store.Read(ctx, WorksheetArchive)
	if err != nil {
		return err
	}
	archivedBefore := countBatchRows(archive, ids)

	if err := s.store.Write(ctx, WorksheetArchive, archive.Append(moved)); err != nil {
		return fmt.Errorf("archive write: %w", err)
	}
	if err := s.store.Write(ctx, WorksheetMaster, remaining); err != nil {
		return &PartialArchiveError{
			BatchIDs:         batchIDs,
			ExpectedArchived: archivedBefore + len(moved.Rows),
			ActualArchived:   archivedBefore + len(moved.Rows),
			RemainingActive:  len(moved.Rows),
			Err:              err,
		}
	}

	return s.verifyArchive(ctx, batchIDs, ids, archivedBefore+len(moved.Rows))
}

// verifyArchive re-reads both worksheets and compares expected vs actual
// row counts for the moved batches.
func (s *Service) verifyArchive(ctx context.Context, batchIDs []string, ids map[string]bool, expectedArchived int) error {
	archive, err := s.store.Read(ctx, WorksheetArchive)
	if err != nil {
		return err
	}
	master, err := s.store.Read(ctx, WorksheetMaster)
	if err != nil {
		return err
	}

	actualArchived := countBatchRows(archive, ids)
	remainingActive := countBatchRows(master, ids)
	if actualArchived != expectedArchived || remainingActive != 0 {
		return &PartialArchiveError{
			BatchIDs:         batchIDs,
			ExpectedArchived: expectedArchived,
			ActualArchived:   actualArchived,
			RemainingActive:  remainingActive,
		}
	}
	return nil
}

// ClearArchive replaces the archive worksheet with zero rows, preserving
// its column headers. Idempotent.
func (s *Service) ClearArchive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	archive, err := s.store.Read(ctx, WorksheetArchive)
	if err != nil {
		return err
	}
	return s.store.Write(ctx, WorksheetArchive, Table{Columns: archive.Columns})
}

// splitByBatch partitions t's rows into those whose batch id is outside
// the id set (kept) and those inside it (taken). Both halves share t's
// column list.
func splitByBatch(t Table, ids map[string]bool) (kept, taken Table) {
	kept = Table{Columns: t.Columns}
	taken = Table{Columns: t.Columns}
	for i, row := range t.Rows {
		if ids[t.Cell(i, TagBatchID)] {
			taken.Rows = append(taken.Rows, row)
		} else {
			kept.Rows = append(kept.Rows, row)
		}
	}
	return kept, taken
}

func countBatchRows(t Table, ids map[string]bool) int {
	n := 0
	for i := range t.Rows {
		if ids[t.Cell(i, TagBatchID)] {
			n++
		}
	}
	return n
}
