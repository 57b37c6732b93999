// Package main provides the pubdir CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/facultyhub/pubdir/internal/auth"
	"github.com/facultyhub/pubdir/internal/config"
	"github.com/facultyhub/pubdir/internal/directory"
	"github.com/facultyhub/pubdir/internal/merge"
	"github.com/facultyhub/pubdir/internal/scholar"
	"github.com/facultyhub/pubdir/internal/storage"
	"github.com/facultyhub/pubdir/internal/telemetry"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pubdir",
	Short: "Faculty publication directory",
	Long: `pubdir manages a directory of faculty members and their publications.

Core features:
  - Faculty accounts with generated credentials and public profile links
  - Publications entered by hand or synced from Google Scholar
  - Citation metrics (h-index, i10-index) and dashboard breakdowns
  - A REST API for the web frontend

Data lives in SQLite; export writes JSONL snapshots or BibTeX.
All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default "+config.DefaultPath()+")")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(cfg *config.Config) *storage.DB {
	db, err := storage.OpenDB(cfg.DBPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// newLogger builds the process logger. Output goes to stderr so JSON results
// on stdout stay machine-readable.
func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newScholarClient builds the Scholar client, backed by Redis when a URL is
// configured. The returned cleanup closes the Redis connection.
func newScholarClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*scholar.Client, func()) {
	opts := []scholar.ClientOption{
		scholar.WithRateLimit(cfg.Scholar.RateLimit),
		scholar.WithMaxPages(cfg.Scholar.MaxPages),
		scholar.WithLogger(logger),
	}
	if cfg.Scholar.APIKey != "" {
		opts = append(opts, scholar.WithAPIKey(cfg.Scholar.APIKey))
	}
	if cfg.Scholar.BaseURL != "" {
		opts = append(opts, scholar.WithBaseURL(cfg.Scholar.BaseURL))
	}

	cleanup := func() {}
	if cfg.RedisURL != "" {
		rdb, err := scholar.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("scholar cache disabled", "error", err)
		} else {
			opts = append(opts, scholar.WithCache(scholar.NewRedisCache(rdb), cfg.Scholar.CacheTTL))
			cleanup = func() { _ = rdb.Close() }
		}
	}
	return scholar.NewClient(opts...), cleanup
}

// app bundles what most commands need.
type app struct {
	cfg     *config.Config
	db      *storage.DB
	svc     *directory.Service
	metrics *telemetry.Metrics
	logger  *slog.Logger
	cleanup func()
}

func (a *app) Close() {
	a.cleanup()
	a.db.Close()
}

// mustOpenApp loads config, opens the store and wires the directory service.
func mustOpenApp(ctx context.Context) *app {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)
	db := mustOpenDatabase(cfg)
	client, cleanup := newScholarClient(ctx, cfg, logger)

	var tokens directory.TokenIssuer
	if cfg.JWTSigningKey != "" {
		tokens = auth.NewTokenService(cfg.JWTSigningKey, cfg.TokenTTL)
	}
	m := telemetry.New()
	svc := directory.New(db, client, tokens, directory.Options{
		FrontendURL: cfg.FrontendURL,
		MergePolicy: merge.ParsePolicy(cfg.MergePolicy),
		Metrics:     m,
		Logger:      logger,
	})
	return &app{cfg: cfg, db: db, svc: svc, metrics: m, logger: logger, cleanup: cleanup}
}

// commandContext returns a context bounded by timeout, or the command's own
// context when timeout is zero.
func commandContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
