package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/allode/property-backend/internal/adapters/database"
	"github.com/allode/property-backend/internal/application/services"
	"github.com/allode/property-backend/internal/evaluation"
	"github.com/allode/property-backend/internal/infrastructure/clients/postgres"
	"github.com/allode/property-backend/internal/infrastructure/observability"
	"github.com/allode/property-backend/pkg/config"
)

func main() {
	var goldenPath string
	flag.StringVar(&goldenPath, "golden", "config/golden_queries.json", "path to the golden query set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger("property-evaluate", cfg.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	autocompleteService := services.NewAutocompleteService(database.NewSuggestionAdapter(pgClient))

	queries, err := evaluation.LoadGoldenQueries(goldenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load golden queries")
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatal().Err(err).Msg("invalid golden query set")
	}

	runner := evaluation.NewRunner(autocompleteService)
	summary, err := runner.Run(context.Background(), queries)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	// Output results as JSON
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode summary")
	}
	fmt.Fprintln(os.Stdout, string(out))
}
