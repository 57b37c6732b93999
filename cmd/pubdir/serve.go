package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/facultyhub/pubdir/internal/auth"
	"github.com/facultyhub/pubdir/internal/config"
	"github.com/facultyhub/pubdir/internal/httpapi"
	"github.com/facultyhub/pubdir/internal/scheduler"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	Long: `Run the REST API used by the web frontend.

Requires a JWT signing key (PUBDIR_JWT_SIGNING_KEY). When sync_schedule is
set, every faculty member with a Google Scholar link is synced on that
schedule. Prometheus metrics are served at /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := mustOpenApp(ctx)
	defer a.Close()
	if err := a.cfg.RequireServe(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if serveAddr != "" {
		a.cfg.Addr = serveAddr
	}

	if a.cfg.SyncSchedule != "" {
		sched, err := config.ParseSchedule(a.cfg.SyncSchedule)
		if err != nil {
			exitWithError(ExitConfigError, "sync_schedule: %v", err)
		}
		go scheduler.New(sched, a.svc, a.logger).Run(ctx)
		a.logger.Info("scholar sync scheduled", "schedule", a.cfg.SyncSchedule)
	}

	router := httpapi.NewRouter(httpapi.Options{
		Directory:   a.svc,
		Tokens:      auth.NewTokenService(a.cfg.JWTSigningKey, a.cfg.TokenTTL),
		Metrics:     a.metrics,
		Logger:      a.logger,
		FrontendURL: a.cfg.FrontendURL,
	})
	srv := httpapi.NewServer(a.cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting pubdir", "addr", a.cfg.Addr, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			exitWithError(ExitError, "server error: %v", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", "timeout", a.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		exitWithError(ExitError, "graceful shutdown failed: %v", err)
	}
	return nil
}
