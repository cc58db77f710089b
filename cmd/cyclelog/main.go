// Package main is the entry point for cyclelog.
// Its sole responsibility is wiring dependencies together and running the
// command tree. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/cyclelog/internal/calendar"
	"github.com/pkordes/cyclelog/internal/cli"
	"github.com/pkordes/cyclelog/internal/config"
	"github.com/pkordes/cyclelog/internal/handler"
	"github.com/pkordes/cyclelog/internal/middleware"
	"github.com/pkordes/cyclelog/internal/refresh"
	"github.com/pkordes/cyclelog/internal/repo"
	"github.com/pkordes/cyclelog/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// Logs go to stderr so they never mix with command output on stdout.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Upstream ---------------------------------------------------------
	flavor, err := repo.ParseFlavor(cfg.APIFlavor)
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}
	client := &http.Client{Timeout: cfg.RequestTimeout}
	cached := repo.NewCachedLogRepo(repo.NewLogRepo(client, cfg.APIBaseURL, flavor, repo.WithListPath(cfg.APIListPath)), cfg.CacheTTL)
	logs := service.NewLogService(cached, flavor)
	cycles := service.NewCycleService(cached)

	ctrl := calendar.New(logs,
		calendar.WithAlerter(cli.Alerter(os.Stderr)),
		calendar.WithLogger(logger),
		calendar.WithWeekStart(cfg.WeekStart),
	)

	app := &cli.App{
		Calendar: ctrl,
		Cycles:   cycles,
		Serve: func(ctx context.Context) error {
			return serve(ctx, cfg, logger, cached, logs, cycles)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewRootCommand(app))
	stop()
	os.Exit(code)
}

// serve runs the local calendar service until ctx is cancelled, then drains
// in-flight requests.
func serve(ctx context.Context, cfg config.Config, logger *slog.Logger,
	cached *repo.CachedLogRepo, logs *service.LogService, cycles *service.CycleService) error {
	// The service reports failures in responses, so its controller has no alerter.
	ctrl := calendar.New(logs,
		calendar.WithLogger(logger),
		calendar.WithWeekStart(cfg.WeekStart),
	)

	scheduler, err := refresh.New(cfg.RefreshCron, cached, logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer,
	// then CORS and the body size cap.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Mount("/", handler.NewServer(ctrl, cycles).Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "upstream", cfg.APIBaseURL, "flavor", cfg.APIFlavor)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
