package directory

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/facultyhub/pubdir/internal/faculty"
	"github.com/facultyhub/pubdir/internal/merge"
	"github.com/facultyhub/pubdir/internal/metrics"
	"github.com/facultyhub/pubdir/internal/publication"
	"github.com/facultyhub/pubdir/internal/scholar"
)

// SyncResult is the outcome of a Scholar sync for one faculty member.
type SyncResult struct {
	FacultyID    string               `json:"facultyId"`
	Publications []publication.Record `json:"publications"`
	Metrics      metrics.Summary      `json:"metrics"`
	Added        int                  `json:"added"`
	Refreshed    int                  `json:"refreshed"`
	Merge        merge.Stats          `json:"merge"`
}

// SyncScholar pulls the faculty member's Google Scholar articles, merges them
// with the stored publications and stores what is new. Under ExternalWins,
// stored records that collide with a provider record take its bibliographic
// fields and citation count.
func (s *Service) SyncScholar(ctx context.Context, facultyID string) (*SyncResult, error) {
	f, err := s.facultyByFacultyID(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, f); err != nil {
		return nil, err
	}
	authorID, err := faculty.ScholarAuthorID(f.GoogleScholarLink)
	switch {
	case errors.Is(err, faculty.ErrNoScholarLink):
		return nil, validationError("Google Scholar link not provided", err)
	case err != nil:
		return nil, validationError("Invalid Google Scholar link", err)
	}
	if f.Email == "" {
		return nil, validationError("Profile email is required before syncing", nil)
	}
	if s.provider == nil {
		return nil, providerError("Google Scholar sync is not configured", scholar.ErrAuthError)
	}

	start := time.Now()
	res, err := s.syncScholar(ctx, f, authorID)
	s.metrics.RecordSync(err, time.Since(start))
	if err != nil {
		s.logger.ErrorContext(ctx, "scholar sync failed", "faculty_id", f.FacultyID, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "scholar sync complete",
		"faculty_id", f.FacultyID,
		"added", res.Added,
		"refreshed", res.Refreshed,
		"duplicates", res.Merge.Duplicates,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (s *Service) syncScholar(ctx context.Context, f *faculty.Faculty, authorID string) (*SyncResult, error) {
	var (
		local    []publication.Record
		articles []scholar.Article
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		local, err = s.store.ListPublications(gctx, f.Email)
		return err
	})
	g.Go(func() error {
		var err error
		articles, err = s.provider.FetchArticles(gctx, authorID)
		if err != nil {
			return providerError("Failed to fetch publications from Google Scholar", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	external := scholar.MapArticles(articles, f.Email)
	merged := merge.Merge(local, external, s.policy)

	fresh := merge.NewOnly(local, merged.Records)
	if len(fresh) > 0 {
		if err := s.store.InsertPublications(ctx, fresh); err != nil {
			return nil, err
		}
		s.metrics.AddPublications(publication.SourceScholar, len(fresh))
	}

	refreshed := 0
	if s.policy == merge.ExternalWins {
		n, err := s.refreshFromProvider(ctx, local, merged.Records)
		if err != nil {
			return nil, err
		}
		refreshed = n
	}

	all, err := s.store.ListPublications(ctx, f.Email)
	if err != nil {
		return nil, err
	}
	return &SyncResult{
		FacultyID:    f.FacultyID,
		Publications: all,
		Metrics:      metrics.Compute(all),
		Added:        len(fresh),
		Refreshed:    refreshed,
		Merge:        merged.Stats,
	}, nil
}

// refreshFromProvider rewrites stored records whose merged winner came from
// the provider. Identity, type and creation time of the stored record are kept.
func (s *Service) refreshFromProvider(ctx context.Context, local, merged []publication.Record) (int, error) {
	stored := make(map[string]publication.Record, len(local))
	for _, rec := range local {
		stored[merge.NormalizeTitle(rec.Title)] = rec
	}

	n := 0
	for _, winner := range merged {
		if winner.Source != publication.SourceScholar || winner.ID != "" {
			continue
		}
		old, ok := stored[merge.NormalizeTitle(winner.Title)]
		if !ok {
			continue
		}
		if sameBibliography(old, winner) {
			continue
		}
		updated := winner.Clone()
		updated.ID = old.ID
		updated.Type = old.Type
		updated.CreatedAt = old.CreatedAt
		if err := s.store.UpdatePublication(ctx, &updated); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func sameBibliography(a, b publication.Record) bool {
	return a.Title == b.Title &&
		a.Journal == b.Journal &&
		a.Citations == b.Citations &&
		a.YearValue() == b.YearValue() &&
		a.URL == b.URL
}

// SyncAllResult summarizes a scheduled sync over every linked faculty member.
type SyncAllResult struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
	Added  int `json:"added"`
}

// SyncAll syncs every faculty member with a Scholar link. Individual failures
// are logged and counted; only listing the faculty can fail the whole run.
func (s *Service) SyncAll(ctx context.Context) (SyncAllResult, error) {
	var out SyncAllResult
	list, err := s.store.ListFacultyWithScholarLink(ctx)
	if err != nil {
		return out, err
	}
	for _, f := range list {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := s.SyncScholar(ctx, f.FacultyID)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping faculty in scheduled sync", "faculty_id", f.FacultyID, "error", err)
			out.Failed++
			continue
		}
		out.Synced++
		out.Added += res.Added
	}
	return out, nil
}
