package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/facultyhub/pubdir/internal/faculty"
)

const selectFacultyFields = `id, faculty_id, password_hash, first_name, last_name, full_name,
	email, profile_photo, is_profile_complete, public_profile_token,
	google_scholar_link, created_at, updated_at`

// CreateFaculty inserts a new faculty row. It returns ErrDuplicate if the
// faculty id or public profile token is taken.
func (d *DB) CreateFaculty(ctx context.Context, f *faculty.Faculty) error {
	now := d.now()
	f.CreatedAt, f.UpdatedAt = now, now
	if f.ProfilePhoto == "" {
		f.ProfilePhoto = faculty.DefaultPhoto
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO faculty (`+selectFacultyFields+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.FacultyID, f.PasswordHash, f.FirstName, f.LastName, f.FullName,
		f.Email, f.ProfilePhoto, f.IsProfileComplete, nullableStringValue(f.PublicProfileToken),
		f.GoogleScholarLink, formatTime(f.CreatedAt), formatTime(f.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("faculty %s: %w", f.FacultyID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("inserting faculty %s: %w", f.FacultyID, err)
	}
	return nil
}

// UpdateFaculty overwrites every mutable column of the row with f.ID.
func (d *DB) UpdateFaculty(ctx context.Context, f *faculty.Faculty) error {
	f.UpdatedAt = d.now()
	res, err := d.db.ExecContext(ctx, `
		UPDATE faculty SET
			password_hash = ?, first_name = ?, last_name = ?, full_name = ?,
			email = ?, profile_photo = ?, is_profile_complete = ?,
			public_profile_token = ?, google_scholar_link = ?, updated_at = ?
		WHERE id = ?`,
		f.PasswordHash, f.FirstName, f.LastName, f.FullName,
		f.Email, f.ProfilePhoto, f.IsProfileComplete,
		nullableStringValue(f.PublicProfileToken), f.GoogleScholarLink, formatTime(f.UpdatedAt),
		f.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("faculty %s: %w", f.FacultyID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("updating faculty %s: %w", f.FacultyID, err)
	}
	return requireAffected(res, "faculty "+f.ID)
}

// GetFaculty retrieves a faculty member by internal id.
func (d *DB) GetFaculty(ctx context.Context, id string) (*faculty.Faculty, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+selectFacultyFields+` FROM faculty WHERE id = ?`, id)
	return scanFacultyRow(row, "faculty "+id)
}

// GetFacultyByFacultyID retrieves a faculty member by login id.
func (d *DB) GetFacultyByFacultyID(ctx context.Context, facultyID string) (*faculty.Faculty, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+selectFacultyFields+` FROM faculty WHERE faculty_id = ?`, facultyID)
	return scanFacultyRow(row, "faculty "+facultyID)
}

// GetFacultyByToken retrieves a faculty member by public profile token.
func (d *DB) GetFacultyByToken(ctx context.Context, token string) (*faculty.Faculty, error) {
	if token == "" {
		return nil, fmt.Errorf("profile token: %w", ErrNotFound)
	}
	row := d.db.QueryRowContext(ctx, `SELECT `+selectFacultyFields+` FROM faculty WHERE public_profile_token = ?`, token)
	return scanFacultyRow(row, "profile token")
}

// SearchFaculty returns faculty whose first, last or full name, or
// "first last", contains term case-insensitively. limit <= 0 means no limit.
func (d *DB) SearchFaculty(ctx context.Context, term string, limit int) ([]faculty.Faculty, error) {
	pattern := "%" + escapeLike(term) + "%"
	query := `SELECT ` + selectFacultyFields + ` FROM faculty
		WHERE first_name LIKE ?1 ESCAPE '\'
		   OR last_name LIKE ?1 ESCAPE '\'
		   OR full_name LIKE ?1 ESCAPE '\'
		   OR (first_name || ' ' || last_name) LIKE ?1 ESCAPE '\'
		ORDER BY created_at, faculty_id`
	args := []any{pattern}
	if limit > 0 {
		query += ` LIMIT ?2`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching faculty: %w", err)
	}
	return scanFacultyRows(rows)
}

// SuggestFaculty returns up to limit faculty whose first or last name contains term.
func (d *DB) SuggestFaculty(ctx context.Context, term string, limit int) ([]faculty.Faculty, error) {
	pattern := "%" + escapeLike(term) + "%"
	rows, err := d.db.QueryContext(ctx, `SELECT `+selectFacultyFields+` FROM faculty
		WHERE first_name LIKE ?1 ESCAPE '\' OR last_name LIKE ?1 ESCAPE '\'
		ORDER BY created_at, faculty_id
		LIMIT ?2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("suggesting faculty: %w", err)
	}
	return scanFacultyRows(rows)
}

// ListFaculty returns every faculty row in registration order.
func (d *DB) ListFaculty(ctx context.Context) ([]faculty.Faculty, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+selectFacultyFields+` FROM faculty ORDER BY created_at, faculty_id`)
	if err != nil {
		return nil, fmt.Errorf("listing faculty: %w", err)
	}
	return scanFacultyRows(rows)
}

// ListFacultyWithScholarLink returns faculty that can be synced from Google Scholar.
func (d *DB) ListFacultyWithScholarLink(ctx context.Context) ([]faculty.Faculty, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+selectFacultyFields+` FROM faculty
		WHERE google_scholar_link != '' AND email != ''
		ORDER BY created_at, faculty_id`)
	if err != nil {
		return nil, fmt.Errorf("listing scholar-linked faculty: %w", err)
	}
	return scanFacultyRows(rows)
}

func scanFaculty(s rowScanner) (*faculty.Faculty, error) {
	var (
		f                    faculty.Faculty
		token                sql.NullString
		createdAt, updatedAt string
	)
	err := s.Scan(
		&f.ID, &f.FacultyID, &f.PasswordHash, &f.FirstName, &f.LastName, &f.FullName,
		&f.Email, &f.ProfilePhoto, &f.IsProfileComplete, &token,
		&f.GoogleScholarLink, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.PublicProfileToken = token.String
	f.CreatedAt = parseTime(createdAt)
	f.UpdatedAt = parseTime(updatedAt)
	return &f, nil
}

func scanFacultyRow(row *sql.Row, what string) (*faculty.Faculty, error) {
	f, err := scanFaculty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", what, err)
	}
	return f, nil
}

func scanFacultyRows(rows *sql.Rows) ([]faculty.Faculty, error) {
	defer rows.Close()
	var list []faculty.Faculty
	for rows.Next() {
		f, err := scanFaculty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning faculty: %w", err)
		}
		list = append(list, *f)
	}
	return list, rows.Err()
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
