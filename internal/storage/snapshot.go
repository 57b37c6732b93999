package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/facultyhub/pubdir/internal/faculty"
	"github.com/facultyhub/pubdir/internal/publication"
)

// Snapshot file names inside an export directory.
const (
	FacultyFile      = "faculty.jsonl"
	PublicationsFile = "publications.jsonl"
)

// facultyDoc is the snapshot form of a faculty row. Unlike the API form it
// carries the password hash so a rebuilt store keeps working logins.
type facultyDoc struct {
	faculty.Faculty
	PasswordHash string `json:"passwordHash"`
}

// publicationDoc accepts loosely typed publication lines so hand-edited
// snapshots go through the same coercion as API input.
type publicationDoc struct {
	publication.Raw
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// SnapshotResult reports how many documents an export or rebuild handled.
type SnapshotResult struct {
	Dir          string `json:"dir"`
	Faculty      int    `json:"faculty"`
	Publications int    `json:"publications"`
}

// ExportSnapshot writes the whole store to dir as JSONL files.
func (d *DB) ExportSnapshot(ctx context.Context, dir string) (SnapshotResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SnapshotResult{}, fmt.Errorf("creating snapshot dir: %w", err)
	}

	list, err := d.ListFaculty(ctx)
	if err != nil {
		return SnapshotResult{}, err
	}
	docs := make([]facultyDoc, len(list))
	for i, f := range list {
		docs[i] = facultyDoc{Faculty: f, PasswordHash: f.PasswordHash}
	}
	if err := WriteJSONL(filepath.Join(dir, FacultyFile), docs); err != nil {
		return SnapshotResult{}, err
	}

	pubs, err := d.ListAllPublications(ctx)
	if err != nil {
		return SnapshotResult{}, err
	}
	if err := WriteJSONL(filepath.Join(dir, PublicationsFile), pubs); err != nil {
		return SnapshotResult{}, err
	}

	return SnapshotResult{Dir: dir, Faculty: len(docs), Publications: len(pubs)}, nil
}

// RebuildFromSnapshot clears the store and reloads it from the JSONL files in dir.
// Publication citation counts and years are re-normalized on the way in.
func (d *DB) RebuildFromSnapshot(ctx context.Context, dir string) (SnapshotResult, error) {
	docs, err := ReadJSONL[facultyDoc](filepath.Join(dir, FacultyFile))
	if err != nil {
		return SnapshotResult{}, err
	}
	pubDocs, err := ReadJSONL[publicationDoc](filepath.Join(dir, PublicationsFile))
	if err != nil {
		return SnapshotResult{}, err
	}

	pubs := make([]publication.Record, 0, len(pubDocs))
	for i, doc := range pubDocs {
		rec, err := publication.FromRaw(doc.Raw)
		if err != nil {
			return SnapshotResult{}, fmt.Errorf("publication %d (%s): %w", i+1, doc.ID, err)
		}
		if rec.Type == "" {
			rec.Type = publication.TypePaper
		}
		rec.Source = doc.Source
		rec.CreatedAt = doc.CreatedAt
		rec.UpdatedAt = doc.UpdatedAt
		pubs = append(pubs, rec)
	}

	err = d.inTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{`DELETE FROM publications_fts`, `DELETE FROM publications`, `DELETE FROM faculty`} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("clearing tables: %w", err)
			}
		}

		for _, doc := range docs {
			f := doc.Faculty
			f.PasswordHash = doc.PasswordHash
			if f.ProfilePhoto == "" {
				f.ProfilePhoto = faculty.DefaultPhoto
			}
			if f.CreatedAt.IsZero() {
				f.CreatedAt = d.now()
			}
			if f.UpdatedAt.IsZero() {
				f.UpdatedAt = f.CreatedAt
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO faculty (`+selectFacultyFields+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				f.ID, f.FacultyID, f.PasswordHash, f.FirstName, f.LastName, f.FullName,
				f.Email, f.ProfilePhoto, f.IsProfileComplete, nullableStringValue(f.PublicProfileToken),
				f.GoogleScholarLink, formatTime(f.CreatedAt), formatTime(f.UpdatedAt),
			)
			if err != nil {
				return fmt.Errorf("inserting faculty %s: %w", f.FacultyID, err)
			}
		}

		for i := range pubs {
			if err := d.insertPublication(ctx, tx, &pubs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SnapshotResult{}, err
	}

	return SnapshotResult{Dir: dir, Faculty: len(docs), Publications: len(pubs)}, nil
}
