package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"dental-clinic-server/internal/calendar"
	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/store"
	"dental-clinic-server/internal/syncer"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment")
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	st := store.New(db)
	sessions := calendar.NewSessionCache(cfg.Calendar, log)
	gateway := calendar.NewGateway(sessions, cfg.Calendar, cfg.Location(), log)
	resolver := calendar.NewResolver(cfg.Calendar)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := syncer.New(st, gateway, resolver, log).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Sweep failed")
	}

	log.Info().
		Int("appointments", summary.Appointments).
		Int("synced", summary.Synced).
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("orphansDeleted", summary.OrphansDeleted).
		Int("skipped", summary.Skipped).
		Int("failures", summary.Failures).
		Msg("Sweep completed")

	if summary.Failures > 0 {
		os.Exit(1)
	}
}
