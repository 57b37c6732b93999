// Package httpapi serves the directory over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/facultyhub/pubdir/internal/auth"
	"github.com/facultyhub/pubdir/internal/directory"
	"github.com/facultyhub/pubdir/internal/faculty"
	"github.com/facultyhub/pubdir/internal/metrics"
	"github.com/facultyhub/pubdir/internal/publication"
)

// RequestTimeout bounds every request handled by the router.
const RequestTimeout = 60 * time.Second

// Directory is the service surface the handlers call. *directory.Service
// satisfies it.
type Directory interface {
	Register(ctx context.Context) (*faculty.Faculty, directory.Credentials, error)
	Login(ctx context.Context, facultyID, password string) (*faculty.Faculty, string, error)
	CompleteProfile(ctx context.Context, facultyID string, p faculty.Profile) (*faculty.Faculty, error)
	UpdatePhoto(ctx context.Context, id, photo string) (*faculty.Faculty, error)
	GenerateProfileURL(ctx context.Context, facultyID string) (string, error)
	PublicProfile(ctx context.Context, token string) (*faculty.Faculty, []publication.Record, error)
	Search(ctx context.Context, name string) (*faculty.Faculty, []publication.Record, error)
	Suggestions(ctx context.Context, query string) ([]directory.NameSuggestion, error)

	ListPublications(ctx context.Context, email string) ([]publication.Record, error)
	FilterPublications(ctx context.Context, email, query, typ string) ([]publication.Record, error)
	SearchPublications(ctx context.Context, email, query string, limit int) ([]publication.Record, error)
	AddPublication(ctx context.Context, email string, raw publication.Raw) (*publication.Record, error)
	UpdatePublication(ctx context.Context, id string, patch publication.Raw) (*publication.Record, error)
	DeletePublication(ctx context.Context, id string) error
	SyncScholar(ctx context.Context, facultyID string) (*directory.SyncResult, error)
	Dashboard(ctx context.Context, email string) (metrics.Dashboard, error)
}

// Options configures the router.
type Options struct {
	Directory   Directory
	Tokens      auth.TokenValidator
	Metrics     MetricsRecorder
	Logger      *slog.Logger
	FrontendURL string
}

// MetricsRecorder exposes request instrumentation and the scrape endpoint.
// *telemetry.Metrics satisfies it.
type MetricsRecorder interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// Handler holds the dependencies shared by every route.
type Handler struct {
	dir    Directory
	logger *slog.Logger
}

// New creates a Handler.
func New(dir Directory, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{dir: dir, logger: logger}
}

// NewRouter wires every public endpoint.
func NewRouter(opts Options) http.Handler {
	h := New(opts.Directory, opts.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(cors(opts.FrontendURL))
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get("/", h.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	h.Register(r, auth.RequireAuth(opts.Tokens, h.logger))
	return r
}

// Register mounts the auth, faculty and publication routes. requireAuth guards
// every route that changes stored data.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.With(requireAuth).Post("/complete-profile", h.handleCompleteProfile)
	})

	r.Route("/faculty", func(r chi.Router) {
		r.Get("/search", h.handleSearchFaculty)
		r.Get("/suggestions", h.handleSuggestions)
		r.Get("/public-profile/{token}", h.handlePublicProfile)
		r.Get("/public-profile/{token}/publications.bib", h.handlePublicBibTeX)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/update/{id}", h.handleUpdateFaculty)
			r.Post("/generate-profile-url", h.handleGenerateProfileURL)
		})
	})

	r.Route("/publications", func(r chi.Router) {
		r.Get("/fetch/{email}", h.handleFetchPublications)
		r.Get("/search/{email}", h.handleSearchPublications)
		r.Get("/metrics/{email}", h.handleDashboard)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/fetch-scholar/{facultyId}", h.handleFetchScholar)
			r.Post("/add", h.handleAddPublication)
			r.Put("/update/{id}", h.handleUpdatePublication)
			r.Delete("/delete/{id}", h.handleDeletePublication)
		})
	})
}

// NewServer builds an HTTP server with the project's timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Faculty publication directory API is running"))
}
