package core

import (
	"context"
	"sync"
	"time"
)

// Worksheet names in the backing store. Each is a single logical table
// mutated wholesale through Store.Read and Store.Write.
const (
	WorksheetMaster  = "master_report"
	WorksheetArchive = "archive_report"
	WorksheetPresets = "presets"
	WorksheetUsers   = "users"
)

// Tag columns stamped onto every ingested row.
const (
	TagBatchID     = "batch_id"
	TagUploadTime  = "upload_time"
	TagDisplayName = "file_display_name"
	TagUploadedBy  = "uploaded_by"
)

// uploadTimeFormat is the layout stored in the upload_time column.
const uploadTimeFormat = "2006-01-02 15:04:05"

// Store is the tabular store capability the engine depends on. Read
// returns the full current contents of a worksheet; Write replaces them
// wholesale. No transactions, row-level updates, or locking may be
// assumed beyond these two operations, which is why every mutation in
// this package is a read-modify-write cycle.
//
// Satisfied by store.SQLite, store.Postgres, and store.Memory.
type Store interface {
	Read(ctx context.Context, worksheet string) (Table, error)
	Write(ctx context.Context, worksheet string, t Table) error
}

// Service provides the consolidation engine's operations against one
// backing store.
//
// The mutex serializes every read-modify-write cycle within this
// process. Across independent processes sharing one store there is no
// isolation: two concurrent writers can silently lose each other's
// appends. Single-writer deployment is a documented constraint of the
// store contract, not something the engine can enforce.
type Service struct {
	store Store

	mu  sync.Mutex
	seq uint64

	// now is swapped in tests to pin batch identifiers.
	now func() time.Time
}

// NewService creates a Service backed by the given store.
func NewService(st Store) *Service {
	return &Service{
		store: st,
		now:   time.Now,
	}
}

func parseUploadTime(raw string) (time.Time, error) {
	return time.ParseInLocation(uploadTimeFormat, raw, time.Local)
}

// Reset empties both the master and archive worksheets, preserving their
// column headers. Batches are unrecoverable afterwards.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ws := range []string{WorksheetMaster, WorksheetArchive} {
		t, err := s.store.Read(ctx, ws)
		if err != nil {
			return err
		}
		if err := s.store.Write(ctx, ws, Table{Columns: t.Columns}); err != nil {
			return err
		}
	}
	return nil
}
