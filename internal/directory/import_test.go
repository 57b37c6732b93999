package directory

import (
	"context"
	"testing"

	"github.com/facultyhub/pubdir/internal/merge"
	"github.com/facultyhub/pubdir/internal/publication"
)

func TestImportPublications(t *testing.T) {
	svc, db := newTestService(t, nil, merge.LocalWins)
	ctx := context.Background()

	if _, err := svc.AddPublication(ctx, "ada@example.edu", publication.Raw{Title: "Notes", Type: "paper"}); err != nil {
		t.Fatalf("AddPublication() error = %v", err)
	}

	res, err := svc.ImportPublications(ctx, "ada@example.edu", []publication.Raw{
		{Title: "NOTES", Type: "paper"},
		{Title: "Sketch of the Analytical Engine", Year: rawJSON("1842"), Authors: rawJSON([]string{"Ada Lovelace"})},
		{Title: "sketch  of the analytical engine", Type: "book"},
		{Title: "   "},
		{Title: "Bad authors", Authors: rawJSON(42)},
	})
	if err != nil {
		t.Fatalf("ImportPublications() error = %v", err)
	}
	want := ImportResult{Added: 1, Duplicates: 2, Invalid: 2}
	if res != want {
		t.Errorf("ImportPublications() = %+v, want %+v", res, want)
	}

	recs, err := db.ListPublications(ctx, "ada@example.edu")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("stored %d publications, want 2", len(recs))
	}
	var imported *publication.Record
	for i := range recs {
		if recs[i].Source == publication.SourceImport {
			imported = &recs[i]
		}
	}
	if imported == nil {
		t.Fatal("no imported publication stored")
	}
	if imported.Title != "Sketch of the Analytical Engine" || imported.Type != publication.TypePaper || imported.YearValue() != 1842 {
		t.Errorf("imported = %+v", imported)
	}
}

func TestImportPublications_RequiresEmail(t *testing.T) {
	svc, _ := newTestService(t, nil, merge.LocalWins)

	_, err := svc.ImportPublications(context.Background(), " ", nil)
	assertCode(t, err, ErrValidation, "Email is required")
}
