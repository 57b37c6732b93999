package importer

import (
	"encoding/json"
	"testing"

	"github.com/facultyhub/pubdir/internal/publication"
)

func TestFlexibleString_String(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string year", `"2026"`, "2026"},
		{"number year", `2026`, "2026"},
		{"null value", `null`, ""},
		{"float number", `2026.0`, "2026.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleString
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("UnmarshalJSON() error = %v", err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlexibleString_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array", `[1,2,3]`},
		{"object", `{"key": "value"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleString
			if err := json.Unmarshal([]byte(tt.input), &f); err == nil {
				t.Errorf("UnmarshalJSON() expected error for input %s", tt.input)
			}
		})
	}
}

func TestParsePaperpile_FullEntry(t *testing.T) {
	data := []byte(`[{
		"_id": "abc123",
		"citekey": "Smith2026-ab",
		"doi": "10.1234/test",
		"title": "Test Paper",
		"abstract": "This is a test abstract",
		"journal": "Test Journal",
		"pubtype": "JOUR",
		"published": {"year": "2026", "month": "3", "day": "15"},
		"author": [
			{"first": "John", "last": "Smith", "orcid": "0000-0001-2345-6789"},
			{"first": "Jane", "last": "Doe"}
		]
	}]`)

	raws, errs := ParsePaperpile(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePaperpile() returned errors: %v", errs)
	}
	if len(raws) != 1 {
		t.Fatalf("ParsePaperpile() returned %d entries, want 1", len(raws))
	}

	rec, err := publication.FromRaw(raws[0])
	if err != nil {
		t.Fatalf("FromRaw() error = %v", err)
	}
	if rec.Title != "Test Paper" {
		t.Errorf("Title = %v, want Test Paper", rec.Title)
	}
	if rec.Abstract != "This is a test abstract" {
		t.Errorf("Abstract = %v", rec.Abstract)
	}
	if rec.Journal != "Test Journal" {
		t.Errorf("Journal = %v, want Test Journal", rec.Journal)
	}
	if len(rec.Authors) != 2 || rec.Authors[0] != "John Smith" || rec.Authors[1] != "Jane Doe" {
		t.Errorf("Authors = %v", rec.Authors)
	}
	if rec.YearValue() != 2026 {
		t.Errorf("Year = %d, want 2026", rec.YearValue())
	}
	if rec.URL != "https://doi.org/10.1234/test" {
		t.Errorf("URL = %v", rec.URL)
	}
	if rec.Type != publication.TypePaper {
		t.Errorf("Type = %v, want paper", rec.Type)
	}
	if rec.Citations != 0 {
		t.Errorf("Citations = %d, want 0", rec.Citations)
	}
}

func TestParsePaperpile_URLFallback(t *testing.T) {
	data := []byte(`[{"title": "No DOI", "url": ["https://example.org/a", "https://example.org/b"]}]`)

	raws, errs := ParsePaperpile(data)
	if len(errs) > 0 || len(raws) != 1 {
		t.Fatalf("ParsePaperpile() = %v, %v", raws, errs)
	}
	if raws[0].URL != "https://example.org/a" {
		t.Errorf("URL = %v", raws[0].URL)
	}
}

func TestParsePaperpile_MissingTitle(t *testing.T) {
	data := []byte(`[
		{"_id": "abc", "citekey": "Bad", "title": "  ", "published": {"year": "2026"}},
		{"_id": "def", "title": "Good"}
	]`)

	raws, errs := ParsePaperpile(data)
	if len(errs) != 1 {
		t.Fatalf("ParsePaperpile() errors = %v, want 1", errs)
	}
	if len(raws) != 1 || raws[0].Title != "Good" {
		t.Errorf("ParsePaperpile() = %+v", raws)
	}
}

func TestParsePaperpile_InvalidYearIsAbsent(t *testing.T) {
	data := []byte(`[{"title": "Test Paper", "published": {"year": "invalid"}}]`)

	raws, errs := ParsePaperpile(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePaperpile() returned errors: %v", errs)
	}
	rec, err := publication.FromRaw(raws[0])
	if err != nil {
		t.Fatal(err)
	}
	if rec.HasYear() {
		t.Errorf("Year = %v, want absent", *rec.Year)
	}
}

func TestParsePaperpile_InvalidJSON(t *testing.T) {
	_, errs := ParsePaperpile([]byte(`{not json`))
	if len(errs) != 1 {
		t.Errorf("ParsePaperpile() errors = %v, want 1", errs)
	}
}

func TestPublicationType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"JOUR", publication.TypePaper},
		{"conf", publication.TypeConference},
		{"CHAP", publication.TypeBook},
		{"PAT", publication.TypePatent},
		{"", publication.TypePaper},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := publicationType(tt.in); got != tt.want {
				t.Errorf("publicationType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
