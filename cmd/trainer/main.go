package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_bookings/internal/adapters/csvsource"
	"hotel_bookings/internal/adapters/observability"
	"hotel_bookings/internal/app"
	"hotel_bookings/internal/forest"
	"hotel_bookings/internal/shared"
	"hotel_bookings/internal/storage/artifact"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fc := forest.Config{
		NTrees:         cfg.NEstimators,
		MaxDepth:       cfg.MaxDepth,
		MinSamplesLeaf: cfg.MinSamplesLeaf,
		Seed:           cfg.Seed,
		Workers:        cfg.Workers,
	}
	log.Info().
		Str("data", cfg.DataPath).
		Str("artifacts", cfg.ArtifactDir).
		Int("trees", fc.NTrees).
		Int("workers", fc.Workers).
		Int64("seed", cfg.Seed).
		Msg("trainer starting")

	svc := app.NewTrainingService(
		csvsource.FileSource{Path: cfg.DataPath, Delimiter: cfg.Delimiter()},
		artifact.NewStore(cfg.ArtifactDir),
		forest.Factory(fc),
		app.TrainingOptions{
			TestSize:         cfg.TestSize,
			Seed:             cfg.Seed,
			Folds:            cfg.CVFolds,
			CountryThreshold: cfg.CountryThreshold,
		},
	)

	start := time.Now()
	res, err := svc.Train(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}
	log.Info().
		Bool("written", res.Written).
		Int("train_rows", res.TrainRows).
		Int("test_rows", res.TestRows).
		Float64("auc", res.Bundle.Metrics.AUC).
		Dur("duration", time.Since(start)).
		Msg("training completed")
}
