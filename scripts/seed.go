package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/allode/property-backend/internal/adapters/database"
	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/infrastructure/clients/postgres"
	"github.com/allode/property-backend/pkg/config"
)

func strp(s string) *string { return &s }

func intp(v int) *int { return &v }

func int64p(v int64) *int64 { return &v }

func seedListing(id, address, street, city, state, zip string, price int64, beds int) *entities.Listing {
	status := "Active"
	homeType := "Single Family"
	now := time.Now()
	return &entities.Listing{
		ID:              id,
		ListingID:       id,
		ListingKey:      uuid.New().String(),
		ListPrice:       int64p(price),
		StreetNumber:    strp(street),
		City:            strp(city),
		StateOrProvince: strp(state),
		PostalCode:      strp(zip),
		UnparsedAddress: strp(address),
		BedroomsTotal:   intp(beds),
		BathroomsTotal:  intp(2),
		StandardStatus:  &status,
		HomeType:        &homeType,
		ListDate:        &now,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	listingRepo := database.NewListingAdapter(pgClient)
	mediaRepo := database.NewMediaAdapter(pgClient)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				listing_media,
				listings,
				app_metadata
			RESTART IDENTITY CASCADE
		`); err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	listings := []*entities.Listing{
		seedListing("NWM0001", "1105 Spring St, Seattle, WA 98101", "1105", "Seattle", "WA", "98101", 750000, 2),
		seedListing("NWM0002", "9810 Spring St, Seattle, WA 98101", "9810", "Seattle", "WA", "98101", 925000, 3),
		seedListing("NWM0003", "410 Pine Ave, Seatac, WA 98188", "410", "Seatac", "WA", "98188", 480000, 3),
		seedListing("NWM0004", "77 Harbor Dr NE, Tacoma, WA 98402", "77", "Tacoma", "WA", "98402", 615000, 4),
		seedListing("NWM0005", "1532 Division St, Spokane, WA 99202", "1532", "Spokane", "WA", "99202", 399000, 3),
		seedListing("NWM0006", "2210 Main St, Kent, WA 98032", "2210", "Kent", "WA", "98032", 525000, 3),
		seedListing("NWM0007", "98 Ocean View Blvd, Seaview, WA 98644", "98", "Seaview", "WA", "98644", 350000, 2),
	}

	for _, l := range listings {
		created, err := listingRepo.Upsert(ctx, l)
		if err != nil {
			log.Error().Err(err).Str("listing_id", l.ID).Msg("failed to seed listing")
			continue
		}

		media := []*entities.ListingMedia{
			{
				ID:        uuid.New().String(),
				ListingID: l.ID,
				MediaKey:  l.ID + "-0",
				MediaURL:  "https://photos.example.com/" + l.ID + "/front.jpg",
				Order:     0,
				Preferred: true,
			},
			{
				ID:        uuid.New().String(),
				ListingID: l.ID,
				MediaKey:  l.ID + "-1",
				MediaURL:  "https://photos.example.com/" + l.ID + "/kitchen.jpg",
				Order:     1,
			},
		}
		if err := mediaRepo.ReplaceForListing(ctx, l.ID, media); err != nil {
			log.Error().Err(err).Str("listing_id", l.ID).Msg("failed to seed media")
			continue
		}

		log.Info().Str("listing_id", l.ID).Bool("created", created).Msg("seeded listing")
	}

	count, err := listingRepo.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to count listings")
	}
	log.Info().Int("listings", count).Msg("seeding complete")
}
