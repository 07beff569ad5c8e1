package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/allode/property-backend/internal/adapters/database"
	"github.com/allode/property-backend/internal/application/services"
	"github.com/allode/property-backend/internal/infrastructure/clients/mlsgrid"
	"github.com/allode/property-backend/internal/infrastructure/clients/postgres"
	"github.com/allode/property-backend/internal/infrastructure/observability"
	"github.com/allode/property-backend/pkg/config"
)

func main() {
	var limit int
	var clear bool

	flag.IntVar(&limit, "limit", 0, "max records to ingest (0 = no cap)")
	flag.BoolVar(&clear, "clear", false, "delete existing listings and media before ingesting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger("property-ingest", cfg.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	svc := services.NewIngestionService(
		mlsgrid.NewClient(&cfg.MLSGrid),
		database.NewListingAdapter(pgClient),
		database.NewMediaAdapter(pgClient),
		database.NewMetadataAdapter(pgClient),
		cfg.MLSGrid.PageSize,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()

	summary, err := svc.Run(ctx, services.IngestionOptions{MaxRecords: limit, Clear: clear})
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion run failed")
	}

	log.Info().
		Int("processed", summary.RecordsProcessed).
		Int("created", summary.ListingsCreated).
		Int("updated", summary.ListingsUpdated).
		Int("skipped", summary.ListingsSkipped).
		Int("media_items", summary.MediaItems).
		Int64("cleared", summary.Cleared).
		Dur("elapsed", time.Since(start)).
		Msg("ingestion run complete")
}
