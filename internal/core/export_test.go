package core

import (
	"context"
	"testing"
)

func exportMaster() Table {
	return Table{
		Columns: []string{"SKU", "Qty", "Color", TagBatchID, TagUploadTime, TagDisplayName, TagUploadedBy},
		Rows: [][]string{
			{"A-1", "5", "", "b1", "2024-03-15 10:30:00", "A", "alice"},
			{"A-2", "7", "", "b1", "2024-03-15 10:30:00", "A", "alice"},
			{"B-1", "2", "red", "b2", "2024-03-15 10:31:00", "B", "bob"},
		},
	}
}

func TestExportCSV(t *testing.T) {
	fields := []string{"Category", "SKU", "Qty", "Color"}

	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{
			// "Color" is never populated for b1 and "Category" exists
			// nowhere, so both are omitted rather than padded.
			name: "single batch omits unpopulated fields",
			ids:  []string{"b1"},
			want: "SKU,Qty\nA-1,5\nA-2,7\n",
		},
		{
			name: "union keeps master row order and populated fields",
			ids:  []string{"b2", "b1"},
			want: "SKU,Qty,Color\nA-1,5,\nA-2,7,\nB-1,2,red\n",
		},
		{
			name: "unknown batch set yields no output",
			ids:  []string{"nope"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExportCSV(exportMaster(), tt.ids, fields)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("ExportCSV() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportCSVQuoting(t *testing.T) {
	master := Table{
		Columns: []string{"Name", TagBatchID},
		Rows: [][]string{
			{`say "hi", twice`, "b1"},
		},
	}

	got, err := ExportCSV(master, []string{"b1"}, []string{"Name"})
	if err != nil {
		t.Fatal(err)
	}
	want := "Name\n\"say \"\"hi\"\", twice\"\n"
	if string(got) != want {
		t.Errorf("ExportCSV() = %q, want %q", got, want)
	}
}

func TestExportCSVSchemaOrderNotSelectionOrder(t *testing.T) {
	// Fields project in schema order regardless of master column order.
	master := Table{
		Columns: []string{"Qty", "SKU", TagBatchID},
		Rows:    [][]string{{"5", "A-1", "b1"}},
	}

	got, err := ExportCSV(master, []string{"b1"}, []string{"SKU", "Qty"})
	if err != nil {
		t.Fatal(err)
	}
	want := "SKU,Qty\nA-1,5\n"
	if string(got) != want {
		t.Errorf("ExportCSV() = %q, want %q", got, want)
	}
}

func TestServiceExportReadsMaster(t *testing.T) {
	st := newFakeStore()
	st.worksheets[WorksheetMaster] = exportMaster()
	s := newTestService(st)

	got, err := s.Export(context.Background(), []string{"b2"}, []string{"SKU", "Color"})
	if err != nil {
		t.Fatal(err)
	}
	want := "SKU,Color\nB-1,red\n"
	if string(got) != want {
		t.Errorf("Export() = %q, want %q", got, want)
	}
}
