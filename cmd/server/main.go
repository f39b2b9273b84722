// Package main is the entry point for the options tracker, a personal ledger
// engine for option-selling and stock trades. It wires the SQLite database,
// the module services, the background scheduler, and the HTTP API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greenmangroup/options-tracker/internal/config"
	"github.com/greenmangroup/options-tracker/internal/database"
	"github.com/greenmangroup/options-tracker/internal/di"
	"github.com/greenmangroup/options-tracker/internal/scheduler"
	"github.com/greenmangroup/options-tracker/internal/server"
	"github.com/greenmangroup/options-tracker/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting options tracker")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire repositories, services, and background jobs
	container, err := di.New(cfg, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	// Scheduler runs the nightly expiration sweep, the ticker-name refresh,
	// and (when configured) the database backup
	sched := scheduler.New(log)
	if err := sched.AddJob("0 5 0 * * *", container.ExpireJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule expiration job")
	}
	if err := sched.AddJob("0 30 6 * * *", container.RefreshNamesJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule ticker refresh job")
	}
	if container.S3Client != nil {
		if err := sched.AddJob(cfg.BackupSchedule, container.BackupJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule backup job")
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(cfg, container, log)
	srv.SetBackupJob(container.BackupJob)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
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
