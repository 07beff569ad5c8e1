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
	"github.com/allode/property-backend/internal/adapters/storage"
	"github.com/allode/property-backend/internal/application/services"
	"github.com/allode/property-backend/internal/infrastructure/clients/mlsgrid"
	"github.com/allode/property-backend/internal/infrastructure/clients/postgres"
	"github.com/allode/property-backend/internal/infrastructure/observability"
	"github.com/allode/property-backend/pkg/config"
)

func main() {
	var batchSize int
	var listingID string
	var force bool

	flag.IntVar(&batchSize, "batch", 100, "max listings to mirror in one pass")
	flag.StringVar(&listingID, "listing", "", "single listing ID to mirror")
	flag.BoolVar(&force, "force", false, "re-upload photos that already have a stored copy")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger("property-mirror", cfg.Env)

	if !cfg.R2.Configured() {
		log.Fatal().Msg("object storage is not configured")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewR2Adapter(ctx, &cfg.R2)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	svc := services.NewPhotoMirrorService(
		mlsgrid.NewClient(&cfg.MLSGrid),
		store,
		database.NewListingAdapter(pgClient),
		database.NewMediaAdapter(pgClient),
	)

	start := time.Now()

	if listingID != "" {
		if err := svc.MirrorListing(ctx, listingID, force); err != nil {
			log.Fatal().Err(err).Str("listing_id", listingID).Msg("mirror failed")
		}
		log.Info().Str("listing_id", listingID).Dur("elapsed", time.Since(start)).Msg("listing mirrored")
		return
	}

	summary, err := svc.MirrorPending(ctx, batchSize)
	if err != nil {
		log.Fatal().Err(err).Msg("mirror pass failed")
	}

	log.Info().
		Int("scanned", summary.ListingsScanned).
		Int("mirrored", summary.ListingsMirrored).
		Int("failures", len(summary.Failures)).
		Dur("elapsed", time.Since(start)).
		Msg("mirror pass complete")
}
