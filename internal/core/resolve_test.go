package core

import (
	"reflect"
	"testing"
)

func TestResolveSmartMatch(t *testing.T) {
	tests := []struct {
		name    string
		fields  []string
		sources []string
		want    ColumnMapping
	}{
		{
			name:    "field name contained in source column",
			fields:  []string{"SKU"},
			sources: []string{"Item SKU Code"},
			want:    ColumnMapping{"SKU": "Item SKU Code"},
		},
		{
			name:    "source column contained in field name",
			fields:  []string{"Product Name"},
			sources: []string{"name"},
			want:    ColumnMapping{"Product Name": "name"},
		},
		{
			name:    "matching is case-insensitive",
			fields:  []string{"category"},
			sources: []string{"CATEGORY"},
			want:    ColumnMapping{"category": "CATEGORY"},
		},
		{
			name:    "first source column in order wins",
			fields:  []string{"SKU"},
			sources: []string{"Old SKU", "New SKU"},
			want:    ColumnMapping{"SKU": "Old SKU"},
		},
		{
			name:    "empty source list leaves everything unmapped",
			fields:  []string{"SKU", "Qty"},
			sources: nil,
			want:    ColumnMapping{"SKU": "", "Qty": ""},
		},
		{
			name:    "two targets may share one source column",
			fields:  []string{"Stock", "Stock on Hand"},
			sources: []string{"Stock"},
			want:    ColumnMapping{"Stock": "Stock", "Stock on Hand": "Stock"},
		},
		{
			// Literal scenario: "qty" is not a substring of "quantity"
			// and "quantity" is not a substring of "qty", so neither
			// field maps. The user overrides by hand.
			name:    "no substring relation stays unmapped",
			fields:  []string{"SKU", "Qty"},
			sources: []string{"Item Code", "Quantity"},
			want:    ColumnMapping{"SKU": "", "Qty": ""},
		},
		{
			name:    "empty source column name never matches",
			fields:  []string{"SKU"},
			sources: []string{"", "SKU"},
			want:    ColumnMapping{"SKU": "SKU"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.fields, tt.sources, nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolvePresetPriority(t *testing.T) {
	preset := &Preset{
		RuleName: "acme",
		Headers: map[string]string{
			"SKU": "Item Code",
		},
	}

	tests := []struct {
		name    string
		fields  []string
		sources []string
		want    ColumnMapping
	}{
		{
			// "Product SKU" would smart-match "SKU", but the preset's
			// exact header takes priority.
			name:    "preset beats smart match",
			fields:  []string{"SKU"},
			sources: []string{"Product SKU", "Item Code"},
			want:    ColumnMapping{"SKU": "Item Code"},
		},
		{
			name:    "absent preset header falls back to smart match",
			fields:  []string{"SKU"},
			sources: []string{"Product SKU"},
			want:    ColumnMapping{"SKU": "Product SKU"},
		},
		{
			name:    "preset match is case-sensitive",
			fields:  []string{"SKU"},
			sources: []string{"item code", "Product SKU"},
			want:    ColumnMapping{"SKU": "Product SKU"},
		},
		{
			name:    "field without preset entry uses smart match",
			fields:  []string{"Qty"},
			sources: []string{"Qty Sold"},
			want:    ColumnMapping{"Qty": "Qty Sold"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.fields, tt.sources, preset)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColumnMappingRevalidate(t *testing.T) {
	m := ColumnMapping{"SKU": "Item Code", "Qty": "Quantity", "Name": ""}
	m.Revalidate([]string{"Quantity"})

	want := ColumnMapping{"SKU": "", "Qty": "Quantity", "Name": ""}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("after Revalidate: %v, want %v", m, want)
	}
}

func TestColumnMappingIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		m    ColumnMapping
		want bool
	}{
		{"nil mapping", nil, true},
		{"all unmapped", ColumnMapping{"A": "", "B": ""}, true},
		{"one mapped", ColumnMapping{"A": "", "B": "src"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}
