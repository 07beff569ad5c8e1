package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/allode/property-backend/internal/domain/repositories"
	"github.com/allode/property-backend/internal/infrastructure/clients/mlsgrid"
	apperrors "github.com/allode/property-backend/pkg/errors"
	"github.com/allode/property-backend/pkg/retry"
)

// LastPopulateRunKey is the metadata key recording when the most recent
// ingestion run finished.
const LastPopulateRunKey = "last_populate_run"

// IngestionSummary reports what one ingestion run did.
type IngestionSummary struct {
	RunID            string    `json:"runId"`
	RecordsProcessed int       `json:"recordsProcessed"`
	ListingsCreated  int       `json:"listingsCreated"`
	ListingsUpdated  int       `json:"listingsUpdated"`
	ListingsSkipped  int       `json:"listingsSkipped"`
	MediaItems       int       `json:"mediaItems"`
	Cleared          int64     `json:"cleared"`
	FinishedAt       time.Time `json:"finishedAt"`
}

// IngestionService pulls property pages from the MLS feed and upserts them
// into the listing store.
type IngestionService struct {
	client       mlsgrid.Client
	listingRepo  repositories.ListingRepository
	mediaRepo    repositories.MediaRepository
	metadataRepo repositories.MetadataRepository
	pageSize     int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	client mlsgrid.Client,
	listingRepo repositories.ListingRepository,
	mediaRepo repositories.MediaRepository,
	metadataRepo repositories.MetadataRepository,
	pageSize int,
) *IngestionService {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &IngestionService{
		client:       client,
		listingRepo:  listingRepo,
		mediaRepo:    mediaRepo,
		metadataRepo: metadataRepo,
		pageSize:     pageSize,
	}
}

// IngestionOptions controls one run. MaxRecords of 0 means no cap. Clear
// wipes listings and media before the run starts.
type IngestionOptions struct {
	MaxRecords int
	Clear      bool
}

// Run executes one ingestion pass, paging the feed via its nextLink until
// it is exhausted or MaxRecords is reached.
func (s *IngestionService) Run(ctx context.Context, opts IngestionOptions) (*IngestionSummary, error) {
	summary := &IngestionSummary{RunID: uuid.New().String()}
	logger := log.With().Str("run_id", summary.RunID).Logger()

	if opts.Clear {
		if _, err := s.mediaRepo.DeleteAll(ctx); err != nil {
			return nil, err
		}
		cleared, err := s.listingRepo.DeleteAll(ctx)
		if err != nil {
			return nil, err
		}
		summary.Cleared = cleared
		logger.Info().Int64("cleared", cleared).Msg("cleared existing listings before ingestion")
	}

	nextLink := ""
	for {
		page, err := s.fetchPage(ctx, nextLink)
		if err != nil {
			return nil, err
		}

		for _, record := range page.Value {
			if opts.MaxRecords > 0 && summary.RecordsProcessed >= opts.MaxRecords {
				break
			}
			summary.RecordsProcessed++

			if record.ListingID == "" {
				summary.ListingsSkipped++
				continue
			}
			if record.MlgCanView != nil && !*record.MlgCanView {
				summary.ListingsSkipped++
				continue
			}

			listing, media := TransformProperty(record)

			created, err := s.listingRepo.Upsert(ctx, listing)
			if err != nil {
				return nil, err
			}
			if created {
				summary.ListingsCreated++
			} else {
				summary.ListingsUpdated++
			}

			if err := s.mediaRepo.ReplaceForListing(ctx, listing.ID, media); err != nil {
				return nil, err
			}
			summary.MediaItems += len(media)
		}

		if page.NextLink == "" || (opts.MaxRecords > 0 && summary.RecordsProcessed >= opts.MaxRecords) {
			break
		}
		nextLink = page.NextLink
	}

	summary.FinishedAt = time.Now().UTC()
	if err := s.metadataRepo.Set(ctx, LastPopulateRunKey, summary.FinishedAt.Format(time.RFC3339)); err != nil {
		logger.Warn().Err(err).Msg("failed to record last populate run")
	}

	logger.Info().
		Int("processed", summary.RecordsProcessed).
		Int("created", summary.ListingsCreated).
		Int("updated", summary.ListingsUpdated).
		Int("skipped", summary.ListingsSkipped).
		Msg("ingestion run finished")

	return summary, nil
}

// fetchPage retries transient feed failures with backoff before giving up.
func (s *IngestionService) fetchPage(ctx context.Context, nextLink string) (*mlsgrid.PropertiesResponse, error) {
	var page *mlsgrid.PropertiesResponse
	err := retry.Do(ctx, retry.HTTPConfig(), func() error {
		var err error
		page, err = s.client.GetProperties(ctx, mlsgrid.PropertiesRequest{
			Top:      s.pageSize,
			NextLink: nextLink,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// LastPopulateRun returns the finish time of the most recent run, or nil
// when no run has completed yet. Store failures propagate; a missing key
// does not.
func (s *IngestionService) LastPopulateRun(ctx context.Context) (*time.Time, error) {
	value, err := s.metadataRepo.Get(ctx, LastPopulateRunKey)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, apperrors.NewInternalError("invalid last populate timestamp", err)
	}
	return &t, nil
}
