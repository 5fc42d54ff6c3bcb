package core

import (
	"fmt"
	"sync"
)

// SchemaRegistry holds the ordered list of target field names for one
// session. Field order is significant: it defines export column order.
//
// Any mutation invalidates previously resolved column mappings; callers
// detect that through Generation and re-resolve.
type SchemaRegistry struct {
	mu     sync.Mutex
	fields []string
	gen    uint64
}

// NewSchemaRegistry creates a registry seeded with the given fields.
// Duplicate seeds are dropped, keeping the first occurrence.
func NewSchemaRegistry(fields []string) *SchemaRegistry {
	r := &SchemaRegistry{}
	for _, f := range fields {
		if f != "" && !contains(r.fields, f) {
			r.fields = append(r.fields, f)
		}
	}
	return r
}

// Fields returns a copy of the current ordered field list.
func (r *SchemaRegistry) Fields() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fields...)
}

// Generation returns a counter that increments on every mutation. A
// ColumnMapping resolved against an older generation is stale and must
// be re-resolved before use.
func (r *SchemaRegistry) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// AddField appends a new field to the end of the list. The comparison is
// a case-sensitive exact match: "SKU" and "sku" are distinct fields.
func (r *SchemaRegistry) AddField(name string) error {
	if name == "" {
		return fmt.Errorf("add field: name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if contains(r.fields, name) {
		return fmt.Errorf("add field %q: %w", name, ErrDuplicateField)
	}
	r.fields = append(r.fields, name)
	r.gen++
	return nil
}

// RenameField replaces the name at index in place. Data already stored
// under the old name is not touched: the old column becomes orphaned in
// the store. That is the documented behavior, not reconciled here.
func (r *SchemaRegistry) RenameField(index int, newName string) error {
	if newName == "" {
		return fmt.Errorf("rename field: name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.fields) {
		return fmt.Errorf("rename field at %d: %w", index, ErrFieldIndex)
	}
	if r.fields[index] == newName {
		return nil
	}
	for i, f := range r.fields {
		if i != index && f == newName {
			return fmt.Errorf("rename field to %q: %w", newName, ErrDuplicateField)
		}
	}
	r.fields[index] = newName
	r.gen++
	return nil
}

// RemoveField removes the first occurrence of name. Removing an absent
// field is a no-op.
func (r *SchemaRegistry) RemoveField(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, f := range r.fields {
		if f == name {
			r.fields = append(r.fields[:i], r.fields[i+1:]...)
			r.gen++
			return
		}
	}
}
