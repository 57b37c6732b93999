package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/facultyhub/pubdir/internal/faculty"
	"github.com/facultyhub/pubdir/internal/publication"
)

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// setupTestDB opens a throwaway database seeded with one faculty member and
// three publications.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.WithClock(stepClock())

	ctx := context.Background()
	f := &faculty.Faculty{
		ID:                "f-1",
		FacultyID:         "25000001",
		PasswordHash:      "hash",
		FirstName:         "Ada",
		LastName:          "Lovelace",
		FullName:          "Ada Lovelace",
		Email:             "ada@example.edu",
		IsProfileComplete: true,
		GoogleScholarLink: "https://scholar.google.com/citations?user=ADA1",
	}
	if err := db.CreateFaculty(ctx, f); err != nil {
		t.Fatalf("CreateFaculty() error = %v", err)
	}

	pubs := []publication.Record{
		{
			FacultyEmail: "ada@example.edu",
			Title:        "Notes on the Analytical Engine",
			Authors:      []string{"Ada Lovelace"},
			Journal:      "Scientific Memoirs",
			Year:         publication.IntPtr(1843),
			Citations:    120,
			Abstract:     "Translation with extensive notes.",
			Type:         publication.TypePaper,
		},
		{
			FacultyEmail: "ada@example.edu",
			Title:        "Bernoulli Numbers by Machine",
			Authors:      []string{"Ada Lovelace", "Charles Babbage"},
			Citations:    15,
			Type:         publication.TypeBook,
			Source:       publication.SourceScholar,
		},
		{
			FacultyEmail: "other@example.edu",
			Title:        "Difference Engines",
			Authors:      []string{"Charles Babbage"},
			Year:         publication.IntPtr(1822),
			Type:         publication.TypePaper,
		},
	}
	if err := db.InsertPublications(ctx, pubs); err != nil {
		t.Fatalf("InsertPublications() error = %v", err)
	}
	return db
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("OpenDB() did not create database file")
	}

	// Reopening must not fail on the existing schema.
	db.Close()
	db2, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() second open error = %v", err)
	}
	db2.Close()
}

func TestDB_CreateFaculty_Defaults(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetFacultyByFacultyID(context.Background(), "25000001")
	if err != nil {
		t.Fatalf("GetFacultyByFacultyID() error = %v", err)
	}
	if got.ProfilePhoto != faculty.DefaultPhoto {
		t.Errorf("ProfilePhoto = %q, want %q", got.ProfilePhoto, faculty.DefaultPhoto)
	}
	if got.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, "hash")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestDB_CreateFaculty_Duplicate(t *testing.T) {
	db := setupTestDB(t)

	err := db.CreateFaculty(context.Background(), &faculty.Faculty{ID: "f-2", FacultyID: "25000001", PasswordHash: "x"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreateFaculty() error = %v, want ErrDuplicate", err)
	}
}

func TestDB_UpdateFaculty_EmailTaken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"f-2", "f-3"} {
		f := &faculty.Faculty{ID: id, FacultyID: "2500000" + id[2:], PasswordHash: "x"}
		if err := db.CreateFaculty(ctx, f); err != nil {
			t.Fatalf("CreateFaculty(%s) error = %v", id, err)
		}
	}

	other, err := db.GetFaculty(ctx, "f-2")
	if err != nil {
		t.Fatal(err)
	}
	other.Email = "ADA@example.edu"
	if err := db.UpdateFaculty(ctx, other); !errors.Is(err, ErrDuplicate) {
		t.Errorf("UpdateFaculty() error = %v, want ErrDuplicate", err)
	}

	other.Email = "babbage@example.edu"
	if err := db.UpdateFaculty(ctx, other); err != nil {
		t.Errorf("UpdateFaculty() with a free email error = %v", err)
	}
}

func TestOpenDB_MigratesFTSWithoutJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "old.db")
	raw, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	stmts := []string{
		`CREATE TABLE publications (
			id TEXT PRIMARY KEY,
			faculty_email TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			authors_json TEXT NOT NULL DEFAULT '[]',
			journal TEXT NOT NULL DEFAULT '',
			pub_year INTEGER,
			citations INTEGER NOT NULL DEFAULT 0 CHECK (citations >= 0),
			url TEXT NOT NULL DEFAULT '',
			abstract TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'manual',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE VIRTUAL TABLE publications_fts USING fts5(id UNINDEXED, title, abstract, authors_text)`,
		`INSERT INTO publications (id, faculty_email, title, journal, type, created_at, updated_at)
			VALUES ('p-1', 'ada@example.edu', 'Sketch', 'Scientific Memoirs', 'paper', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`,
		`INSERT INTO publications_fts (id, title, abstract, authors_text) VALUES ('p-1', 'Sketch', '', '')`,
	}
	for _, stmt := range stmts {
		if _, err := raw.Exec(stmt); err != nil {
			t.Fatalf("seeding old schema: %v", err)
		}
	}
	raw.Close()

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	hits, err := db.SearchPublications(context.Background(), "ada@example.edu", "memoirs", 10)
	if err != nil {
		t.Fatalf("SearchPublications() error = %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "p-1" {
		t.Errorf("SearchPublications(memoirs) = %+v, want p-1", hits)
	}
}

func TestDB_GetFaculty_NotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetFaculty(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetFaculty() error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetFacultyByToken(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetFacultyByToken(\"\") error = %v, want ErrNotFound", err)
	}
}

func TestDB_UpdateFaculty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	f, err := db.GetFaculty(ctx, "f-1")
	if err != nil {
		t.Fatalf("GetFaculty() error = %v", err)
	}
	f.PublicProfileToken = "tok123"
	f.ProfilePhoto = "ada.png"
	if err := db.UpdateFaculty(ctx, f); err != nil {
		t.Fatalf("UpdateFaculty() error = %v", err)
	}

	got, err := db.GetFacultyByToken(ctx, "tok123")
	if err != nil {
		t.Fatalf("GetFacultyByToken() error = %v", err)
	}
	if got.ProfilePhoto != "ada.png" {
		t.Errorf("ProfilePhoto = %q, want %q", got.ProfilePhoto, "ada.png")
	}

	missing := &faculty.Faculty{ID: "nope", FacultyID: "x"}
	if err := db.UpdateFaculty(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateFaculty(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDB_SearchFaculty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		term string
		want int
	}{
		{"ada", 1},
		{"LOVE", 1},
		{"Ada Lovelace", 1},
		{"babbage", 0},
		{"%", 0},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := db.SearchFaculty(ctx, tt.term, 0)
			if err != nil {
				t.Fatalf("SearchFaculty() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("SearchFaculty(%q) returned %d, want %d", tt.term, len(got), tt.want)
			}
		})
	}
}

func TestDB_SuggestFaculty_Limit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i, id := range []string{"25000002", "25000003", "25000004"} {
		f := &faculty.Faculty{ID: "g-" + id, FacultyID: id, PasswordHash: "x", FirstName: "Adam", LastName: "Smith"}
		if err := db.CreateFaculty(ctx, f); err != nil {
			t.Fatalf("CreateFaculty(%d) error = %v", i, err)
		}
	}

	got, err := db.SuggestFaculty(ctx, "ad", 2)
	if err != nil {
		t.Fatalf("SuggestFaculty() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("SuggestFaculty() returned %d, want 2", len(got))
	}
	if got[0].FacultyID != "25000001" {
		t.Errorf("first suggestion = %s, want registration order", got[0].FacultyID)
	}
}

func TestDB_ListFacultyWithScholarLink(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.CreateFaculty(ctx, &faculty.Faculty{ID: "f-2", FacultyID: "25000002", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateFaculty() error = %v", err)
	}

	got, err := db.ListFacultyWithScholarLink(ctx)
	if err != nil {
		t.Fatalf("ListFacultyWithScholarLink() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "f-1" {
		t.Errorf("ListFacultyWithScholarLink() = %+v, want only f-1", got)
	}
}

func TestDB_ListPublications(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.ListPublications(context.Background(), "ada@example.edu")
	if err != nil {
		t.Fatalf("ListPublications() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListPublications() returned %d, want 2", len(got))
	}
	if got[0].Title != "Notes on the Analytical Engine" {
		t.Errorf("first title = %q, want insertion order", got[0].Title)
	}
	if got[0].ID == "" {
		t.Error("InsertPublications did not assign an id")
	}
	if got[0].Source != publication.SourceManual {
		t.Errorf("Source = %q, want default %q", got[0].Source, publication.SourceManual)
	}
	if got[1].Source != publication.SourceScholar {
		t.Errorf("Source = %q, want %q", got[1].Source, publication.SourceScholar)
	}
	if got[0].YearValue() != 1843 {
		t.Errorf("Year = %d, want 1843", got[0].YearValue())
	}
	if got[1].HasYear() {
		t.Errorf("Year = %d, want absent", got[1].YearValue())
	}
	if len(got[1].Authors) != 2 {
		t.Errorf("Authors = %v, want 2 entries", got[1].Authors)
	}
}

func TestDB_ListPublications_UnknownEmail(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.ListPublications(context.Background(), "nobody@example.edu")
	if err != nil {
		t.Fatalf("ListPublications() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListPublications() = %v, want empty non-nil slice", got)
	}
}

func TestDB_UpdatePublication(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	pubs, _ := db.ListPublications(ctx, "ada@example.edu")
	rec := pubs[0]
	rec.Title = "Sketch of a Calculating Machine"
	rec.Citations = 200
	rec.Year = nil
	if err := db.UpdatePublication(ctx, &rec); err != nil {
		t.Fatalf("UpdatePublication() error = %v", err)
	}

	got, err := db.GetPublication(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetPublication() error = %v", err)
	}
	if got.Title != rec.Title || got.Citations != 200 || got.HasYear() {
		t.Errorf("GetPublication() = %+v, want updated record", got)
	}

	// The full-text index follows the new title.
	hits, err := db.SearchPublications(ctx, "ada@example.edu", "sketch", 0)
	if err != nil {
		t.Fatalf("SearchPublications() error = %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("SearchPublications(sketch) returned %d, want 1", len(hits))
	}
	hits, _ = db.SearchPublications(ctx, "ada@example.edu", "analytical", 0)
	if len(hits) != 0 {
		t.Errorf("SearchPublications(analytical) returned %d after rename, want 0", len(hits))
	}

	missing := publication.Record{ID: "nope", Title: "x", Type: "paper"}
	if err := db.UpdatePublication(ctx, &missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePublication(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDB_DeletePublication(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	pubs, _ := db.ListPublications(ctx, "ada@example.edu")
	if err := db.DeletePublication(ctx, pubs[0].ID); err != nil {
		t.Fatalf("DeletePublication() error = %v", err)
	}
	if _, err := db.GetPublication(ctx, pubs[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPublication() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.DeletePublication(ctx, pubs[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePublication() error = %v, want ErrNotFound", err)
	}

	count, err := db.CountPublications(ctx)
	if err != nil {
		t.Fatalf("CountPublications() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountPublications() = %d, want 2", count)
	}
}

func TestDB_SearchPublications(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		email string
		query string
		want  int
	}{
		{"title word", "ada@example.edu", "engine", 1},
		{"abstract word", "ada@example.edu", "translation", 1},
		{"author", "ada@example.edu", "babbage", 1},
		{"journal", "ada@example.edu", "memoirs", 1},
		{"scoped to email", "ada@example.edu", "difference", 0},
		{"other faculty", "other@example.edu", "difference", 1},
		{"special characters quoted", "ada@example.edu", "engine:", 1},
		{"blank", "ada@example.edu", "   ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.SearchPublications(ctx, tt.email, tt.query, 10)
			if err != nil {
				t.Fatalf("SearchPublications() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("SearchPublications(%q) returned %d, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"two words", "two words"},
		{"  padded  ", "padded"},
		{"", ""},
		{"with:colon", `"with:colon"`},
		{`with"quote`, `"with""quote"`},
		{"hyphen-ated", `"hyphen-ated"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := prepareFTSQuery(tt.input); got != tt.want {
				t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_a\b`); got != `50\%\_a\\b` {
		t.Errorf("escapeLike() = %q", got)
	}
}

func TestDB_Close(t *testing.T) {
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
