// Package main is the entry point for the capital allocation API server.
// It loads configuration, wires the record source, batch runner and
// portfolio selector, evaluates an initial batch, and serves the HTTP
// API until interrupted.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/victorgreggio/capalloc/internal/application"
	"github.com/victorgreggio/capalloc/internal/config"
	"github.com/victorgreggio/capalloc/internal/database"
	"github.com/victorgreggio/capalloc/internal/domain"
	"github.com/victorgreggio/capalloc/internal/modules/assets"
	"github.com/victorgreggio/capalloc/internal/modules/formulas"
	"github.com/victorgreggio/capalloc/internal/modules/portfolio"
	"github.com/victorgreggio/capalloc/internal/modules/risk"
	"github.com/victorgreggio/capalloc/internal/scheduler"
	"github.com/victorgreggio/capalloc/internal/server"
	"github.com/victorgreggio/capalloc/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting capalloc server")

	// Record source: CSV file or SQLite database.
	var source domain.AlternativeSource
	switch cfg.Source {
	case config.SourceSQLite:
		db, err := database.New(database.Config{
			Path:    cfg.DatabasePath,
			Profile: database.ProfileStandard,
			Name:    "assets",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open assets database")
		}
		defer db.Close()

		sqliteSource, err := assets.NewSQLiteSource(db)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize assets schema")
		}
		source = sqliteSource
		log.Info().Str("path", cfg.DatabasePath).Msg("Using SQLite record source")
	default:
		source = assets.NewCSVSource(cfg.DataFile)
		log.Info().Str("path", cfg.DataFile).Msg("Using CSV record source")
	}

	evaluator, err := risk.NewEvaluator(formulas.DefaultGraph(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid metric graph")
	}

	app := application.New(
		source,
		risk.NewRunner(evaluator, cfg.Workers, log),
		portfolio.NewSelector(log),
		log,
	)

	// Evaluate an initial batch so /api/results has data immediately.
	// A missing data file is not fatal; the first /api/evaluate call
	// will retry.
	if batch, err := app.EvaluateAll(); err != nil {
		log.Warn().Err(err).Msg("Initial evaluation failed, continuing without a batch")
	} else {
		log.Info().
			Str("run_id", batch.RunID).
			Int("evaluated", len(batch.Results)).
			Int("dropped", batch.Dropped).
			Dur("elapsed", batch.Elapsed).
			Msg("Initial batch evaluated")
	}

	// Periodic re-evaluation, disabled unless a cron spec is configured.
	sched := scheduler.New(log)
	if cfg.RefreshCron != "" {
		if err := sched.AddJob(cfg.RefreshCron, scheduler.NewRefreshJob(app, log)); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RefreshCron).Msg("Invalid refresh schedule")
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(server.Config{
		Log:     log,
		App:     app,
		Config:  cfg,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
