// Package publication defines the publication record shared by the store, the
// scholar provider mapper, and the metrics and merge engines.
package publication

import (
	"errors"
	"strings"
	"time"
)

// Type tags used by the application. Stored values are free-form; these are the
// ones the dashboard offers.
const (
	TypePaper      = "paper"
	TypePatent     = "patent"
	TypeBook       = "book"
	TypeConference = "conference"
)

// Source records where a publication entered the directory.
const (
	SourceManual  = "manual"
	SourceScholar = "scholar"
	SourceImport  = "import"
)

// Record represents one scholarly work attributed to a faculty member.
//
// Citations is never negative. Year is nil when absent or unparseable, which
// keeps the record out of year groupings without bucketing it under zero.
type Record struct {
	ID           string    `json:"id"`
	FacultyEmail string    `json:"facultyEmail,omitempty"`
	Title        string    `json:"title"`
	Authors      []string  `json:"authors"`
	Journal      string    `json:"journal,omitempty"`
	Year         *int      `json:"year,omitempty"`
	Citations    int       `json:"citations"`
	URL          string    `json:"url,omitempty"`
	Abstract     string    `json:"abstract,omitempty"`
	Type         string    `json:"type"`
	Source       string    `json:"source,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// Validation errors for locally entered records.
var (
	ErrMissingTitle = errors.New("title is required")
	ErrMissingType  = errors.New("type is required")
)

// Validate checks the fields required of a locally entered record.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(r.Type) == "" {
		return ErrMissingType
	}
	return nil
}

// HasYear reports whether the record carries a publication year.
func (r Record) HasYear() bool {
	return r.Year != nil
}

// YearValue returns the year or 0 when absent.
func (r Record) YearValue() int {
	if r.Year == nil {
		return 0
	}
	return *r.Year
}

// IntPtr is a small helper for building records with a year.
func IntPtr(v int) *int {
	return &v
}

// Clone returns a copy that shares no slices or pointers with r.
func (r Record) Clone() Record {
	c := r
	if r.Authors != nil {
		c.Authors = append([]string(nil), r.Authors...)
	}
	if r.Year != nil {
		y := *r.Year
		c.Year = &y
	}
	return c
}
