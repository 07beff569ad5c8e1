package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/allode/property-backend/internal/adapters/cache"
	"github.com/allode/property-backend/internal/adapters/database"
	"github.com/allode/property-backend/internal/adapters/storage"
	"github.com/allode/property-backend/internal/api/handlers"
	"github.com/allode/property-backend/internal/api/middleware"
	"github.com/allode/property-backend/internal/api/routes"
	"github.com/allode/property-backend/internal/application/services"
	"github.com/allode/property-backend/internal/domain/providers"
	"github.com/allode/property-backend/internal/domain/repositories"
	"github.com/allode/property-backend/internal/infrastructure/clients/mlsgrid"
	"github.com/allode/property-backend/internal/infrastructure/clients/postgres"
	"github.com/allode/property-backend/internal/infrastructure/clients/redis"
	"github.com/allode/property-backend/internal/infrastructure/observability"
	"github.com/allode/property-backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis is optional; without it the API serves uncached.
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Info().Msg("Redis client initialized")
	}

	// Object storage is optional; without it photo mirroring is disabled
	// and image URLs resolve to the originals.
	var objectStore providers.ObjectStore
	if cfg.R2.Configured() {
		store, err := storage.NewR2Adapter(ctx, &cfg.R2)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize object storage, photo mirroring disabled")
		} else {
			objectStore = store
			log.Info().Msg("object storage initialized")
		}
	} else {
		log.Info().Msg("object storage not configured, photo mirroring disabled")
	}

	feedClient := mlsgrid.NewClient(&cfg.MLSGrid)

	// Adapters
	var listingAdapter repositories.ListingRepository = database.NewListingAdapter(pgClient)
	if cacheProvider != nil {
		listingAdapter = database.NewCachedListingAdapter(listingAdapter, cacheProvider)
		log.Info().Msg("listing adapter wrapped with caching layer")
	}
	mediaAdapter := database.NewMediaAdapter(pgClient)
	metadataAdapter := database.NewMetadataAdapter(pgClient)
	suggestionAdapter := database.NewSuggestionAdapter(pgClient)

	// Services
	autocompleteService := services.NewAutocompleteService(suggestionAdapter)
	ingestionService := services.NewIngestionService(
		feedClient,
		listingAdapter,
		mediaAdapter,
		metadataAdapter,
		cfg.MLSGrid.PageSize,
	)

	var mirrorService *services.PhotoMirrorService
	if objectStore != nil {
		mirrorService = services.NewPhotoMirrorService(feedClient, objectStore, listingAdapter, mediaAdapter)
	}

	// Handlers
	listingHandler := handlers.NewListingHandler(listingAdapter, mediaAdapter, ingestionService)
	autocompleteHandler := handlers.NewAutocompleteHandler(autocompleteService)
	imageHandler := handlers.NewImageHandler(listingAdapter, mediaAdapter)
	adminHandler := handlers.NewAdminHandler(ingestionService, mirrorService)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Info().Msg("cache middleware initialized")
	}

	router := routes.NewRouter(
		listingHandler,
		autocompleteHandler,
		imageHandler,
		adminHandler,
		cacheMiddleware,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
