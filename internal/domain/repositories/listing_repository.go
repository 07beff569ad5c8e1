package repositories

import (
	"context"

	"github.com/allode/property-backend/internal/domain/entities"
)

// ListingFilter holds the filters and pagination for listing searches.
type ListingFilter struct {
	Address   string
	ListingID string
	City      string
	State     string
	ZipCode   string

	MinPrice  *int64
	MaxPrice  *int64
	Bedrooms  *int
	Bathrooms *int

	HomeTypes []string
	Statuses  []string

	InternetAddressDisplay *bool

	// SortBy is one of price_asc, price_desc, sqft_desc, lot_size_desc,
	// beds_desc, baths_desc. Unknown values fall back to price_desc.
	SortBy string

	Page     int
	PageSize int
}

// ListingRepository defines data access for listings
type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Listing, error)

	// List returns one page of listings plus the total count matching the
	// filter before pagination.
	List(ctx context.Context, filter ListingFilter) ([]*entities.Listing, int, error)

	// Upsert inserts or updates a listing row keyed by id. It reports
	// whether a new row was created.
	Upsert(ctx context.Context, listing *entities.Listing) (bool, error)

	// DeleteAll removes every listing and returns the number deleted.
	DeleteAll(ctx context.Context) (int64, error)

	Count(ctx context.Context) (int, error)

	// SetPrimaryImageMirror records the object-storage location of the
	// listing's mirrored cover photo.
	SetPrimaryImageMirror(ctx context.Context, id, r2Key, r2URL string) error

	// IDsNeedingMirror returns listing ids that have a primary image URL
	// but no mirrored copy yet.
	IDsNeedingMirror(ctx context.Context, limit int) ([]string, error)
}

// MediaRepository defines data access for listing photos
type MediaRepository interface {
	ListByListing(ctx context.Context, listingID string) ([]*entities.ListingMedia, error)

	// ReplaceForListing swaps the listing's gallery for the given rows.
	ReplaceForListing(ctx context.Context, listingID string, media []*entities.ListingMedia) error

	// SetMirror records the object-storage location of one mirrored photo.
	SetMirror(ctx context.Context, mediaID, r2Key, r2URL string) error

	DeleteAll(ctx context.Context) (int64, error)

	Count(ctx context.Context) (int, error)
}

// MetadataRepository is a small key/value store for operational markers such
// as the timestamp of the last ingestion run.
type MetadataRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
