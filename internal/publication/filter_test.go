package publication

import "testing"

func TestFilter(t *testing.T) {
	records := []Record{
		{ID: "1", Title: "Deep Learning for Proteins", Type: TypePaper},
		{ID: "2", Title: "A Learning Apparatus", Type: TypePatent},
		{ID: "3", Title: "Statistics in Genomics", Type: TypePaper},
	}

	tests := []struct {
		name  string
		query string
		typ   string
		want  []string
	}{
		{"no filters", "", "", []string{"1", "2", "3"}},
		{"all type", "", TypeAll, []string{"1", "2", "3"}},
		{"title substring case-insensitive", "LEARNING", "", []string{"1", "2"}},
		{"type only", "", TypePaper, []string{"1", "3"}},
		{"title and type", "learning", TypePatent, []string{"2"}},
		{"no match", "quantum", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.query, tt.typ)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter() returned %d records, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Filter()[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFilter_EmptyInputIsNonNil(t *testing.T) {
	if got := Filter(nil, "x", ""); got == nil {
		t.Error("Filter(nil) = nil, want empty slice")
	}
}
