package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/domain/providers"
	"github.com/allode/property-backend/internal/domain/repositories"
)

// CachedListingAdapter wraps a ListingRepository with read-through caching
// for single-listing lookups. Writes invalidate the cached entry so ingestion
// and mirroring never serve stale detail pages.
type CachedListingAdapter struct {
	adapter repositories.ListingRepository
	cache   providers.CacheProvider
}

// NewCachedListingAdapter creates a new cached listing adapter
func NewCachedListingAdapter(adapter repositories.ListingRepository, cache providers.CacheProvider) repositories.ListingRepository {
	return &CachedListingAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTL (in seconds). Listing rows only change on ingestion or mirror
// runs, both of which invalidate explicitly, so the TTL is a backstop.
const listingByIDTTL = 600

func listingCacheKey(id string) string {
	return fmt.Sprintf("listing:%s", id)
}

// GetByID retrieves a listing by ID with caching
func (a *CachedListingAdapter) GetByID(ctx context.Context, id string) (*entities.Listing, error) {
	cacheKey := listingCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var listing entities.Listing
		if err := json.Unmarshal(cached, &listing); err == nil {
			return &listing, nil
		}
		log.Warn().Err(err).Str("listing_id", id).Msg("failed to unmarshal cached listing")
	}

	listing, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(listing); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, listingByIDTTL); err != nil {
				log.Warn().Err(err).Str("listing_id", id).Msg("failed to cache listing")
			}
		}
	}()

	return listing, nil
}

// List delegates to the underlying adapter. Result pages are cached at the
// HTTP layer where the full query string is part of the key.
func (a *CachedListingAdapter) List(ctx context.Context, filter repositories.ListingFilter) ([]*entities.Listing, int, error) {
	return a.adapter.List(ctx, filter)
}

// Upsert writes through and invalidates the cached entry
func (a *CachedListingAdapter) Upsert(ctx context.Context, listing *entities.Listing) (bool, error) {
	created, err := a.adapter.Upsert(ctx, listing)
	if err != nil {
		return created, err
	}
	a.invalidate(ctx, listing.ID)
	return created, nil
}

// DeleteAll removes every listing. Cached entries are left to expire via TTL
// since the provider has no keyspace scan.
func (a *CachedListingAdapter) DeleteAll(ctx context.Context) (int64, error) {
	return a.adapter.DeleteAll(ctx)
}

func (a *CachedListingAdapter) Count(ctx context.Context) (int, error) {
	return a.adapter.Count(ctx)
}

// SetPrimaryImageMirror writes through and invalidates the cached entry
func (a *CachedListingAdapter) SetPrimaryImageMirror(ctx context.Context, id, r2Key, r2URL string) error {
	if err := a.adapter.SetPrimaryImageMirror(ctx, id, r2Key, r2URL); err != nil {
		return err
	}
	a.invalidate(ctx, id)
	return nil
}

func (a *CachedListingAdapter) IDsNeedingMirror(ctx context.Context, limit int) ([]string, error) {
	return a.adapter.IDsNeedingMirror(ctx, limit)
}

func (a *CachedListingAdapter) invalidate(ctx context.Context, id string) {
	if err := a.cache.Delete(ctx, listingCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("listing_id", id).Msg("failed to invalidate cached listing")
	}
}
