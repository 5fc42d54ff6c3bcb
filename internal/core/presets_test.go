package core

import (
	"context"
	"errors"
	"testing"
)

func TestPresetCRUD(t *testing.T) {
	st := newFakeStore()
	s := newTestService(st)
	ctx := context.Background()

	created, err := s.CreatePreset(ctx, "Acme", "monthly-stock", map[string]string{"SKU": "Item Code"})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("preset got no id")
	}

	got, err := s.GetPreset(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ClientName != "Acme" || got.RuleName != "monthly-stock" {
		t.Errorf("GetPreset() = %+v", got)
	}
	if got.Headers["SKU"] != "Item Code" {
		t.Errorf("headers round-trip failed: %v", got.Headers)
	}

	updated, err := s.UpdatePreset(ctx, created.ID, "Acme", "weekly-stock", map[string]string{"SKU": "Code"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.RuleName != "weekly-stock" || updated.Headers["SKU"] != "Code" {
		t.Errorf("UpdatePreset() = %+v", updated)
	}

	list, err := s.ListPresets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("ListPresets() = %d entries, want 1", len(list))
	}

	if err := s.DeletePreset(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPreset(ctx, created.ID); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("after delete: error = %v, want ErrPresetNotFound", err)
	}
}

func TestPresetEmptyRuleName(t *testing.T) {
	st := newFakeStore()
	s := newTestService(st)
	ctx := context.Background()

	if _, err := s.CreatePreset(ctx, "Acme", "", nil); !errors.Is(err, ErrEmptyRuleName) {
		t.Errorf("CreatePreset error = %v, want ErrEmptyRuleName", err)
	}
	if len(st.worksheets[WorksheetPresets].Rows) != 0 {
		t.Error("rejected preset reached the store")
	}

	p, err := s.CreatePreset(ctx, "Acme", "ok", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpdatePreset(ctx, p.ID, "Acme", "", nil); !errors.Is(err, ErrEmptyRuleName) {
		t.Errorf("UpdatePreset error = %v, want ErrEmptyRuleName", err)
	}
}

func TestPresetUpdateUnknownID(t *testing.T) {
	s := newTestService(newFakeStore())

	if _, err := s.UpdatePreset(context.Background(), "nope", "c", "r", nil); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("UpdatePreset error = %v, want ErrPresetNotFound", err)
	}
}

func TestPresetDeleteUnknownIDNoop(t *testing.T) {
	st := newFakeStore()
	s := newTestService(st)
	ctx := context.Background()

	if _, err := s.CreatePreset(ctx, "Acme", "r", nil); err != nil {
		t.Fatal(err)
	}
	before := st.worksheets[WorksheetPresets]

	if err := s.DeletePreset(ctx, "nope"); err != nil {
		t.Fatal(err)
	}
	if len(st.worksheets[WorksheetPresets].Rows) != len(before.Rows) {
		t.Error("no-op delete changed the presets worksheet")
	}
}
