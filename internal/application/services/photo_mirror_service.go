package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/domain/providers"
	"github.com/allode/property-backend/internal/domain/repositories"
	"github.com/allode/property-backend/internal/infrastructure/clients/mlsgrid"
	apperrors "github.com/allode/property-backend/pkg/errors"
	"github.com/allode/property-backend/pkg/retry"
)

// MirrorSummary reports what one mirroring pass did.
type MirrorSummary struct {
	ListingsScanned  int      `json:"listingsScanned"`
	ListingsMirrored int      `json:"listingsMirrored"`
	Failures         []string `json:"failures,omitempty"`
}

// PhotoMirrorService downloads listing photos from the MLS host and uploads
// them to object storage for CDN delivery.
type PhotoMirrorService struct {
	client      mlsgrid.Client
	store       providers.ObjectStore
	listingRepo repositories.ListingRepository
	mediaRepo   repositories.MediaRepository
	retryCfg    retry.Config
}

// NewPhotoMirrorService creates a new photo mirror service
func NewPhotoMirrorService(
	client mlsgrid.Client,
	store providers.ObjectStore,
	listingRepo repositories.ListingRepository,
	mediaRepo repositories.MediaRepository,
) *PhotoMirrorService {
	return &PhotoMirrorService{
		client:      client,
		store:       store,
		listingRepo: listingRepo,
		mediaRepo:   mediaRepo,
		retryCfg:    retry.HTTPConfig(),
	}
}

// MirrorPending mirrors the cover photo of up to batchSize listings that
// have a primary image URL but no stored copy yet. Per-listing failures are
// collected rather than aborting the pass; a single dead image URL must not
// stall the whole backlog.
func (s *PhotoMirrorService) MirrorPending(ctx context.Context, batchSize int) (*MirrorSummary, error) {
	ids, err := s.listingRepo.IDsNeedingMirror(ctx, batchSize)
	if err != nil {
		return nil, err
	}

	summary := &MirrorSummary{}
	for _, id := range ids {
		summary.ListingsScanned++
		if err := s.MirrorListing(ctx, id, false); err != nil {
			summary.Failures = append(summary.Failures, fmt.Sprintf("%s: %v", id, err))
			log.Warn().Err(err).Str("listing_id", id).Msg("failed to mirror listing photos")
			continue
		}
		summary.ListingsMirrored++
	}

	return summary, nil
}

// MirrorListing mirrors every photo in one listing's gallery. With force
// false, photos that already have a stored copy are skipped.
func (s *PhotoMirrorService) MirrorListing(ctx context.Context, listingID string, force bool) error {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}

	media, err := s.mediaRepo.ListByListing(ctx, listingID)
	if err != nil {
		return err
	}
	if len(media) == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("listing %s has no photos", listingID))
	}

	primary := entities.PrimaryMedia(media)

	for i, m := range media {
		if !force && m.R2Key != nil {
			continue
		}

		stored, err := s.mirrorOne(ctx, listingID, i, m.MediaURL)
		if err != nil {
			return err
		}

		if err := s.mediaRepo.SetMirror(ctx, m.ID, stored.Key, stored.URL); err != nil {
			return err
		}
		if primary != nil && m.ID == primary.ID {
			if err := s.listingRepo.SetPrimaryImageMirror(ctx, listing.ID, stored.Key, stored.URL); err != nil {
				return err
			}
		}
	}

	return nil
}

// mirrorOne downloads one photo and uploads it under the listing's key
// prefix, retrying transient download failures.
func (s *PhotoMirrorService) mirrorOne(ctx context.Context, listingID string, index int, mediaURL string) (*providers.StoredObject, error) {
	var body []byte
	var contentType string
	err := retry.Do(ctx, s.retryCfg, func() error {
		var err error
		body, contentType, err = s.client.FetchImage(ctx, mediaURL)
		return err
	})
	if err != nil {
		return nil, apperrors.NewExternalError("failed to download listing photo", err)
	}

	key := fmt.Sprintf("properties/%s/%d.%s", listingID, index, extensionFor(contentType))
	return s.store.Put(ctx, key, body, contentType)
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}
