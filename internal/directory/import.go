package directory

import (
	"context"
	"strings"

	"github.com/facultyhub/pubdir/internal/merge"
	"github.com/facultyhub/pubdir/internal/publication"
)

// ImportResult reports a bulk import.
type ImportResult struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

// ImportPublications stores raws for email, skipping payloads that fail
// validation and titles already on record.
func (s *Service) ImportPublications(ctx context.Context, email string, raws []publication.Raw) (ImportResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return ImportResult{}, validationError("Email is required", nil)
	}
	if err := s.authorizeEmail(ctx, email); err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	incoming := make([]publication.Record, 0, len(raws))
	for _, raw := range raws {
		rec, err := publication.FromRaw(raw)
		if err != nil {
			res.Invalid++
			continue
		}
		rec.ID = ""
		rec.FacultyEmail = email
		rec.Source = publication.SourceImport
		if rec.Type == "" {
			rec.Type = publication.TypePaper
		}
		if err := rec.Validate(); err != nil {
			res.Invalid++
			continue
		}
		incoming = append(incoming, rec)
	}

	existing, err := s.store.ListPublications(ctx, email)
	if err != nil {
		return ImportResult{}, err
	}
	fresh := merge.NewOnly(existing, incoming)
	res.Duplicates = len(incoming) - len(fresh)
	if len(fresh) > 0 {
		if err := s.store.InsertPublications(ctx, fresh); err != nil {
			return ImportResult{}, err
		}
		s.metrics.AddPublications(publication.SourceImport, len(fresh))
	}
	res.Added = len(fresh)

	s.logger.Info("publications imported",
		"email", email,
		"added", res.Added,
		"duplicates", res.Duplicates,
		"invalid", res.Invalid,
	)
	return res, nil
}
