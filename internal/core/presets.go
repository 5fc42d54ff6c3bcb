package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Preset is a saved source-header mapping associated with a client/rule
// label. Headers maps each target field name to the literal source
// header expected for it; fields may be absent or empty (unmapped). The
// field keys are a subset of, but need not equal, the current target
// schema.
type Preset struct {
	ID         string            `json:"id"`
	ClientName string            `json:"client_name"`
	RuleName   string            `json:"rule_name"`
	Headers    map[string]string `json:"headers"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Preset worksheet columns. The header map is stored JSON-encoded in a
// single cell since the store only understands flat string tables.
const (
	presetColID      = "preset_id"
	presetColClient  = "client_name"
	presetColRule    = "rule_name"
	presetColHeaders = "headers"
	presetColCreated = "created_at"
)

var presetColumns = []string{presetColID, presetColClient, presetColRule, presetColHeaders, presetColCreated}

// CreatePreset saves a new preset and returns it with a generated id.
// An empty rule name is rejected before any store write.
func (s *Service) CreatePreset(ctx context.Context, clientName, ruleName string, headers map[string]string) (*Preset, error) {
	ruleName = strings.TrimSpace(ruleName)
	if ruleName == "" {
		return nil, fmt.Errorf("create preset: %w", ErrEmptyRuleName)
	}

	p := &Preset{
		ID:         uuid.New().String(),
		ClientName: clientName,
		RuleName:   ruleName,
		Headers:    headers,
		CreatedAt:  s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.Read(ctx, WorksheetPresets)
	if err != nil {
		return nil, err
	}

	row, err := presetRow(p)
	if err != nil {
		return nil, err
	}
	updated := t.Append(Table{Columns: presetColumns, Rows: [][]string{row}})
	if err := s.store.Write(ctx, WorksheetPresets, updated); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPreset returns the preset with the given id.
func (s *Service) GetPreset(ctx context.Context, id string) (*Preset, error) {
	presets, err := s.ListPresets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range presets {
		if presets[i].ID == id {
			return &presets[i], nil
		}
	}
	return nil, fmt.Errorf("preset %q: %w", id, ErrPresetNotFound)
}

// ListPresets returns all saved presets in worksheet order. Rows that
// fail to decode are skipped rather than failing the whole listing.
func (s *Service) ListPresets(ctx context.Context) ([]Preset, error) {
	t, err := s.store.Read(ctx, WorksheetPresets)
	if err != nil {
		return nil, err
	}

	presets := make([]Preset, 0, len(t.Rows))
	for i := range t.Rows {
		p, err := presetFromRow(t, i)
		if err != nil {
			continue
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// UpdatePreset replaces the named preset's label and header map.
func (s *Service) UpdatePreset(ctx context.Context, id, clientName, ruleName string, headers map[string]string) (*Preset, error) {
	ruleName = strings.TrimSpace(ruleName)
	if ruleName == "" {
		return nil, fmt.Errorf("update preset: %w", ErrEmptyRuleName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.Read(ctx, WorksheetPresets)
	if err != nil {
		return nil, err
	}

	for i := range t.Rows {
		if t.Cell(i, presetColID) != id {
			continue
		}
		existing, err := presetFromRow(t, i)
		if err != nil {
			return nil, fmt.Errorf("update preset %q: decode existing: %w", id, err)
		}
		p := &Preset{
			ID:         id,
			ClientName: clientName,
			RuleName:   ruleName,
			Headers:    headers,
			CreatedAt:  existing.CreatedAt,
		}
		row, err := presetRow(p)
		if err != nil {
			return nil, err
		}
		updated := t.Clone()
		updated.Rows[i] = row
		if err := s.store.Write(ctx, WorksheetPresets, updated); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("preset %q: %w", id, ErrPresetNotFound)
}

// DeletePreset removes the preset with the given id. Deleting an unknown
// id is a no-op.
func (s *Service) DeletePreset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.Read(ctx, WorksheetPresets)
	if err != nil {
		return err
	}

	remaining := Table{Columns: t.Columns}
	removed := false
	for i, row := range t.Rows {
		if t.Cell(i, presetColID) == id {
			removed = true
			continue
		}
		remaining.Rows = append(remaining.Rows, row)
	}
	if !removed {
		return nil
	}
	return s.store.Write(ctx, WorksheetPresets, remaining)
}

func presetRow(p *Preset) ([]string, error) {
	headersJSON, err := json.Marshal(p.Headers)
	if err != nil {
		return nil, fmt.Errorf("marshal preset headers: %w", err)
	}
	return []string{
		p.ID,
		p.ClientName,
		p.RuleName,
		string(headersJSON),
		p.CreatedAt.Format(uploadTimeFormat),
	}, nil
}

func presetFromRow(t Table, row int) (Preset, error) {
	p := Preset{
		ID:         t.Cell(row, presetColID),
		ClientName: t.Cell(row, presetColClient),
		RuleName:   t.Cell(row, presetColRule),
	}
	if p.ID == "" {
		return Preset{}, fmt.Errorf("preset row %d: missing id", row)
	}
	if raw := t.Cell(row, presetColHeaders); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Headers); err != nil {
			return Preset{}, fmt.Errorf("preset row %d: decode headers: %w", row, err)
		}
	}
	if raw := t.Cell(row, presetColCreated); raw != "" {
		if ts, err := time.ParseInLocation(uploadTimeFormat, raw, time.Local); err == nil {
			p.CreatedAt = ts
		}
	}
	return p, nil
}
