package store

import (
	"context"
	"sync"

	"github.com/reportstack/consolidator/internal/core"
)

// Memory is an in-process store backend. It exists for tests and for
// running the server without any external database; contents vanish when
// the process exits.
type Memory struct {
	mu         sync.Mutex
	worksheets map[string]core.Table

	// FailWrites, when set, makes every Write return the given error.
	// Tests use it to exercise the partial-archive path.
	FailWrites error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{worksheets: make(map[string]core.Table)}
}

// Read returns a deep copy of the worksheet's contents. A worksheet that
// was never written reads as an empty table.
func (m *Memory) Read(_ context.Context, worksheet string) (core.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.worksheets[worksheet].Clone(), nil
}

// Write replaces the worksheet's contents.
func (m *Memory) Write(_ context.Context, worksheet string, t core.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.worksheets[worksheet] = t.Clone()
	return nil
}
