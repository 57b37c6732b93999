// Package directory implements the faculty publication directory: accounts,
// profiles, publication management, Google Scholar sync and dashboards.
package directory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/facultyhub/pubdir/internal/auth"
	"github.com/facultyhub/pubdir/internal/faculty"
	"github.com/facultyhub/pubdir/internal/merge"
	"github.com/facultyhub/pubdir/internal/publication"
	"github.com/facultyhub/pubdir/internal/scholar"
	"github.com/facultyhub/pubdir/internal/telemetry"
)

// SuggestionLimit caps the names returned by Suggestions.
const SuggestionLimit = 10

// Store is the persistence the service needs. *storage.DB satisfies it.
type Store interface {
	CreateFaculty(ctx context.Context, f *faculty.Faculty) error
	UpdateFaculty(ctx context.Context, f *faculty.Faculty) error
	GetFaculty(ctx context.Context, id string) (*faculty.Faculty, error)
	GetFacultyByFacultyID(ctx context.Context, facultyID string) (*faculty.Faculty, error)
	GetFacultyByToken(ctx context.Context, token string) (*faculty.Faculty, error)
	SearchFaculty(ctx context.Context, term string, limit int) ([]faculty.Faculty, error)
	SuggestFaculty(ctx context.Context, term string, limit int) ([]faculty.Faculty, error)
	ListFacultyWithScholarLink(ctx context.Context) ([]faculty.Faculty, error)

	InsertPublication(ctx context.Context, rec *publication.Record) error
	InsertPublications(ctx context.Context, recs []publication.Record) error
	UpdatePublication(ctx context.Context, rec *publication.Record) error
	DeletePublication(ctx context.Context, id string) error
	GetPublication(ctx context.Context, id string) (*publication.Record, error)
	ListPublications(ctx context.Context, email string) ([]publication.Record, error)
	SearchPublications(ctx context.Context, email, query string, limit int) ([]publication.Record, error)
}

// Provider fetches an author's article list from Google Scholar.
// *scholar.Client satisfies it.
type Provider interface {
	FetchArticles(ctx context.Context, authorID string) ([]scholar.Article, error)
}

// TokenIssuer signs login tokens. *auth.TokenService satisfies it.
type TokenIssuer interface {
	Issue(facultyID, email string) (string, error)
}

// Options configures a Service.
type Options struct {
	FrontendURL string
	MergePolicy merge.Policy
	Metrics     *telemetry.Metrics
	Logger      *slog.Logger
}

// Service implements every directory operation over a Store.
type Service struct {
	store       Store
	provider    Provider
	tokens      TokenIssuer
	metrics     *telemetry.Metrics
	logger      *slog.Logger
	frontendURL string
	policy      merge.Policy
	now         func() time.Time
}

// New creates a Service. provider and tokens may be nil, in which case
// SyncScholar and Login respectively fail.
func New(store Store, provider Provider, tokens TokenIssuer, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := opts.Metrics
	if m == nil {
		m = telemetry.New()
	}
	return &Service{
		store:       store,
		provider:    provider,
		tokens:      tokens,
		metrics:     m,
		logger:      logger,
		frontendURL: opts.FrontendURL,
		policy:      opts.MergePolicy,
		now:         time.Now,
	}
}

// authorize checks that the faculty authenticated on ctx, if any, is owner.
// Contexts without an authenticated faculty (CLI, scheduler) are trusted.
func (s *Service) authorize(ctx context.Context, owner *faculty.Faculty) error {
	actor := auth.FacultyID(ctx)
	if actor == "" || actor == owner.FacultyID {
		return nil
	}
	return forbiddenError("Not allowed to modify another faculty member's data")
}

// authorizeEmail checks ownership of publications attributed to email.
func (s *Service) authorizeEmail(ctx context.Context, email string) error {
	actor := auth.FacultyID(ctx)
	if actor == "" {
		return nil
	}
	f, err := s.store.GetFacultyByFacultyID(ctx, actor)
	if err != nil || f.Email == "" || !strings.EqualFold(f.Email, strings.TrimSpace(email)) {
		return forbiddenError("Not allowed to modify another faculty member's publications")
	}
	return nil
}
