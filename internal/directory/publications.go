package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/facultyhub/pubdir/internal/metrics"
	"github.com/facultyhub/pubdir/internal/publication"
	"github.com/facultyhub/pubdir/internal/storage"
)

// ListPublications returns every publication attributed to email.
func (s *Service) ListPublications(ctx context.Context, email string) ([]publication.Record, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, validationError("Email is required", nil)
	}
	return s.store.ListPublications(ctx, email)
}

// FilterPublications lists email's publications whose title contains query
// and whose type is typ ("" or "all" for any).
func (s *Service) FilterPublications(ctx context.Context, email, query, typ string) ([]publication.Record, error) {
	recs, err := s.ListPublications(ctx, email)
	if err != nil {
		return nil, err
	}
	return publication.Filter(recs, query, typ), nil
}

// SearchPublications runs a full-text query over email's publications.
func (s *Service) SearchPublications(ctx context.Context, email, query string, limit int) ([]publication.Record, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, validationError("Email is required", nil)
	}
	return s.store.SearchPublications(ctx, email, query, limit)
}

// AddPublication normalizes raw and stores it for email. When email is empty
// the payload's facultyEmail is used.
func (s *Service) AddPublication(ctx context.Context, email string, raw publication.Raw) (*publication.Record, error) {
	rec, err := publication.FromRaw(raw)
	if err != nil {
		return nil, validationError("Invalid publication", err)
	}
	if email = strings.TrimSpace(email); email != "" {
		rec.FacultyEmail = email
	}
	if rec.FacultyEmail == "" {
		return nil, validationError("Faculty email is required", nil)
	}
	if err := rec.Validate(); err != nil {
		return nil, validationError(validationMessage(err), err)
	}
	if err := s.authorizeEmail(ctx, rec.FacultyEmail); err != nil {
		return nil, err
	}

	rec.ID = ""
	rec.Source = publication.SourceManual
	if err := s.store.InsertPublication(ctx, &rec); err != nil {
		return nil, err
	}
	s.metrics.AddPublications(rec.Source, 1)
	return &rec, nil
}

// UpdatePublication applies the fields present in patch to the stored
// publication. Blank strings and absent values leave fields unchanged.
func (s *Service) UpdatePublication(ctx context.Context, id string, patch publication.Raw) (*publication.Record, error) {
	rec, err := s.publication(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeEmail(ctx, rec.FacultyEmail); err != nil {
		return nil, err
	}

	update, err := publication.FromRaw(patch)
	if err != nil {
		return nil, validationError("Invalid publication", err)
	}
	if update.Title != "" {
		rec.Title = update.Title
	}
	if len(patch.Authors) > 0 {
		rec.Authors = update.Authors
	}
	if update.Journal != "" {
		rec.Journal = update.Journal
	}
	if len(patch.Year) > 0 {
		rec.Year = update.Year
	}
	if len(patch.Citations) > 0 {
		rec.Citations = update.Citations
	}
	if update.URL != "" {
		rec.URL = update.URL
	}
	if patch.Abstract != "" {
		rec.Abstract = patch.Abstract
	}
	if update.Type != "" {
		rec.Type = update.Type
	}

	if err := s.store.UpdatePublication(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeletePublication removes a publication.
func (s *Service) DeletePublication(ctx context.Context, id string) error {
	rec, err := s.publication(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeEmail(ctx, rec.FacultyEmail); err != nil {
		return err
	}
	return s.store.DeletePublication(ctx, rec.ID)
}

// Metrics computes the summary metrics over email's stored publications.
func (s *Service) Metrics(ctx context.Context, email string) (metrics.Summary, error) {
	recs, err := s.ListPublications(ctx, email)
	if err != nil {
		return metrics.Summary{}, err
	}
	return metrics.Compute(recs), nil
}

// Dashboard computes summary metrics and chart groupings over email's
// stored publications.
func (s *Service) Dashboard(ctx context.Context, email string) (metrics.Dashboard, error) {
	recs, err := s.ListPublications(ctx, email)
	if err != nil {
		return metrics.Dashboard{}, err
	}
	return metrics.BuildDashboard(recs), nil
}

func (s *Service) publication(ctx context.Context, id string) (*publication.Record, error) {
	rec, err := s.store.GetPublication(ctx, strings.TrimSpace(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFoundError("Publication not found", err)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, publication.ErrMissingTitle):
		return "Title is required"
	case errors.Is(err, publication.ErrMissingType):
		return "Type is required"
	}
	return "Invalid publication"
}
