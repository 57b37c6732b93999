package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/facultyhub/pubdir/internal/publication"
)

const selectPublicationFields = `id, faculty_email, title, authors_json, journal, pub_year,
	citations, url, abstract, type, source, created_at, updated_at`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertPublication stores a new publication, assigning an id when empty.
func (d *DB) InsertPublication(ctx context.Context, rec *publication.Record) error {
	return d.inTx(ctx, func(tx *sql.Tx) error {
		return d.insertPublication(ctx, tx, rec)
	})
}

// InsertPublications stores a batch of publications atomically.
func (d *DB) InsertPublications(ctx context.Context, recs []publication.Record) error {
	if len(recs) == 0 {
		return nil
	}
	return d.inTx(ctx, func(tx *sql.Tx) error {
		for i := range recs {
			if err := d.insertPublication(ctx, tx, &recs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) insertPublication(ctx context.Context, x execer, rec *publication.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Source == "" {
		rec.Source = publication.SourceManual
	}
	if rec.Authors == nil {
		rec.Authors = []string{}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = d.now()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	authorsJSON, err := json.Marshal(rec.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors for %s: %w", rec.ID, err)
	}

	_, err = x.ExecContext(ctx, `
		INSERT INTO publications (`+selectPublicationFields+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.FacultyEmail, rec.Title, string(authorsJSON), rec.Journal, nullableYear(rec.Year),
		rec.Citations, rec.URL, rec.Abstract, rec.Type, rec.Source,
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("publication %s: %w", rec.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("inserting publication %s: %w", rec.ID, err)
	}

	return insertFTS(ctx, x, rec)
}

// UpdatePublication overwrites the stored publication with rec.ID.
func (d *DB) UpdatePublication(ctx context.Context, rec *publication.Record) error {
	rec.UpdatedAt = d.now()
	if rec.Authors == nil {
		rec.Authors = []string{}
	}
	authorsJSON, err := json.Marshal(rec.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors for %s: %w", rec.ID, err)
	}

	return d.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE publications SET
				faculty_email = ?, title = ?, authors_json = ?, journal = ?, pub_year = ?,
				citations = ?, url = ?, abstract = ?, type = ?, source = ?, updated_at = ?
			WHERE id = ?`,
			rec.FacultyEmail, rec.Title, string(authorsJSON), rec.Journal, nullableYear(rec.Year),
			rec.Citations, rec.URL, rec.Abstract, rec.Type, rec.Source, formatTime(rec.UpdatedAt),
			rec.ID,
		)
		if err != nil {
			return fmt.Errorf("updating publication %s: %w", rec.ID, err)
		}
		if err := requireAffected(res, "publication "+rec.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM publications_fts WHERE id = ?`, rec.ID); err != nil {
			return fmt.Errorf("clearing fts for %s: %w", rec.ID, err)
		}
		return insertFTS(ctx, tx, rec)
	})
}

// DeletePublication removes a publication. It returns ErrNotFound if none matched.
func (d *DB) DeletePublication(ctx context.Context, id string) error {
	return d.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM publications WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting publication %s: %w", id, err)
		}
		if err := requireAffected(res, "publication "+id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM publications_fts WHERE id = ?`, id); err != nil {
			return fmt.Errorf("clearing fts for %s: %w", id, err)
		}
		return nil
	})
}

// GetPublication retrieves a publication by id.
func (d *DB) GetPublication(ctx context.Context, id string) (*publication.Record, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+selectPublicationFields+` FROM publications WHERE id = ?`, id)
	rec, err := scanPublication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("publication %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning publication %s: %w", id, err)
	}
	return rec, nil
}

// ListPublications returns the publications attributed to email in insertion order.
func (d *DB) ListPublications(ctx context.Context, email string) ([]publication.Record, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+selectPublicationFields+` FROM publications
		WHERE faculty_email = ? ORDER BY created_at, rowid`, email)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	return scanPublications(rows)
}

// ListAllPublications returns every stored publication in insertion order.
func (d *DB) ListAllPublications(ctx context.Context) ([]publication.Record, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+selectPublicationFields+` FROM publications ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	return scanPublications(rows)
}

// SearchPublications runs a full-text query over titles, abstracts, authors
// and journals of the publications attributed to email.
func (d *DB) SearchPublications(ctx context.Context, email, query string, limit int) ([]publication.Record, error) {
	query = prepareFTSQuery(query)
	if query == "" {
		return []publication.Record{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT `+selectPublicationFields+`
		FROM publications
		WHERE faculty_email = ?
		  AND id IN (SELECT id FROM publications_fts WHERE publications_fts MATCH ?)
		ORDER BY created_at, rowid
		LIMIT ?`, email, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching publications: %w", err)
	}
	return scanPublications(rows)
}

// CountPublications returns the number of stored publications.
func (d *DB) CountPublications(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM publications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting publications: %w", err)
	}
	return n, nil
}

func insertFTS(ctx context.Context, x execer, rec *publication.Record) error {
	_, err := x.ExecContext(ctx, `
		INSERT INTO publications_fts (id, title, abstract, authors_text, journal)
		VALUES (?, ?, ?, ?, ?)`, rec.ID, rec.Title, rec.Abstract, strings.Join(rec.Authors, ", "), rec.Journal)
	if err != nil {
		return fmt.Errorf("inserting fts for %s: %w", rec.ID, err)
	}
	return nil
}

func (d *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func nullableYear(y *int) sql.NullInt64 {
	if y == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*y), Valid: true}
}

func scanPublication(s rowScanner) (*publication.Record, error) {
	var (
		rec                  publication.Record
		authorsJSON          string
		year                 sql.NullInt64
		createdAt, updatedAt string
	)
	err := s.Scan(
		&rec.ID, &rec.FacultyEmail, &rec.Title, &authorsJSON, &rec.Journal, &year,
		&rec.Citations, &rec.URL, &rec.Abstract, &rec.Type, &rec.Source, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(authorsJSON), &rec.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors for %s: %w", rec.ID, err)
	}
	if year.Valid {
		y := int(year.Int64)
		rec.Year = &y
	}
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

func scanPublications(rows *sql.Rows) ([]publication.Record, error) {
	defer rows.Close()
	recs := []publication.Record{}
	for rows.Next() {
		rec, err := scanPublication(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning publication: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}
