package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/domain/repositories"
	"github.com/allode/property-backend/internal/infrastructure/clients/mlsgrid"
	apperrors "github.com/allode/property-backend/pkg/errors"
)

// fakeFeed serves pre-built pages in sequence, keyed by nextLink.
type fakeFeed struct {
	pages   []*mlsgrid.PropertiesResponse
	fetches int
	images  map[string][]byte
}

func (f *fakeFeed) GetProperties(_ context.Context, req mlsgrid.PropertiesRequest) (*mlsgrid.PropertiesResponse, error) {
	f.fetches++
	if req.NextLink == "" {
		return f.pages[0], nil
	}
	for i, p := range f.pages[:len(f.pages)-1] {
		if p.NextLink == req.NextLink {
			return f.pages[i+1], nil
		}
	}
	return nil, fmt.Errorf("unknown next link %q", req.NextLink)
}

func (f *fakeFeed) FetchImage(_ context.Context, mediaURL string) ([]byte, string, error) {
	body, ok := f.images[mediaURL]
	if !ok {
		return nil, "", fmt.Errorf("image not found: %s", mediaURL)
	}
	return body, "image/jpeg", nil
}

// fakeListingRepo keeps listings in a map and implements ListingRepository.
type fakeListingRepo struct {
	listings map[string]*entities.Listing
	mirrored map[string]string
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{
		listings: make(map[string]*entities.Listing),
		mirrored: make(map[string]string),
	}
}

func (r *fakeListingRepo) GetByID(_ context.Context, id string) (*entities.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("listing not found")
	}
	return l, nil
}

func (r *fakeListingRepo) List(_ context.Context, _ repositories.ListingFilter) ([]*entities.Listing, int, error) {
	var out []*entities.Listing
	for _, l := range r.listings {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (r *fakeListingRepo) Upsert(_ context.Context, listing *entities.Listing) (bool, error) {
	_, exists := r.listings[listing.ID]
	r.listings[listing.ID] = listing
	return !exists, nil
}

func (r *fakeListingRepo) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(r.listings))
	r.listings = make(map[string]*entities.Listing)
	return n, nil
}

func (r *fakeListingRepo) Count(_ context.Context) (int, error) {
	return len(r.listings), nil
}

func (r *fakeListingRepo) SetPrimaryImageMirror(_ context.Context, id, r2Key, r2URL string) error {
	l, ok := r.listings[id]
	if !ok {
		return apperrors.NewNotFoundError("listing not found")
	}
	l.PrimaryImageR2Key = &r2Key
	l.PrimaryImageR2URL = &r2URL
	r.mirrored[id] = r2Key
	return nil
}

func (r *fakeListingRepo) IDsNeedingMirror(_ context.Context, limit int) ([]string, error) {
	var ids []string
	for id, l := range r.listings {
		if l.PrimaryImageURL != nil && l.PrimaryImageR2Key == nil {
			ids = append(ids, id)
		}
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids, nil
}

// fakeMediaRepo keeps galleries in a map keyed by listing id.
type fakeMediaRepo struct {
	galleries map[string][]*entities.ListingMedia
	mirrored  map[string]string
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{
		galleries: make(map[string][]*entities.ListingMedia),
		mirrored:  make(map[string]string),
	}
}

func (r *fakeMediaRepo) ListByListing(_ context.Context, listingID string) ([]*entities.ListingMedia, error) {
	return r.galleries[listingID], nil
}

func (r *fakeMediaRepo) ReplaceForListing(_ context.Context, listingID string, media []*entities.ListingMedia) error {
	r.galleries[listingID] = media
	return nil
}

func (r *fakeMediaRepo) SetMirror(_ context.Context, mediaID, r2Key, r2URL string) error {
	r.mirrored[mediaID] = r2Key
	for _, gallery := range r.galleries {
		for _, m := range gallery {
			if m.ID == mediaID {
				m.R2Key = &r2Key
				m.R2URL = &r2URL
			}
		}
	}
	return nil
}

func (r *fakeMediaRepo) DeleteAll(_ context.Context) (int64, error) {
	n := 0
	for _, g := range r.galleries {
		n += len(g)
	}
	r.galleries = make(map[string][]*entities.ListingMedia)
	return int64(n), nil
}

func (r *fakeMediaRepo) Count(_ context.Context) (int, error) {
	n := 0
	for _, g := range r.galleries {
		n += len(g)
	}
	return n, nil
}

// fakeMetadataRepo is an in-memory key/value store.
type fakeMetadataRepo struct {
	values map[string]string
	getErr error
}

func newFakeMetadataRepo() *fakeMetadataRepo {
	return &fakeMetadataRepo{values: make(map[string]string)}
}

func (r *fakeMetadataRepo) Get(_ context.Context, key string) (string, error) {
	if r.getErr != nil {
		return "", r.getErr
	}
	v, ok := r.values[key]
	if !ok {
		return "", apperrors.NewNotFoundError("metadata key not found")
	}
	return v, nil
}

func (r *fakeMetadataRepo) Set(_ context.Context, key, value string) error {
	r.values[key] = value
	return nil
}

func feedRecord(id string) mlsgrid.PropertyRecord {
	city := "Seattle"
	return mlsgrid.PropertyRecord{
		ListingID: id,
		City:      &city,
		Media: []mlsgrid.MediaRecord{
			{MediaKey: id + "-m0", MediaURL: "https://photos.example.com/" + id + "/0.jpg"},
		},
	}
}

func TestIngestionRunPagesThroughFeed(t *testing.T) {
	feed := &fakeFeed{
		pages: []*mlsgrid.PropertiesResponse{
			{Value: []mlsgrid.PropertyRecord{feedRecord("L1"), feedRecord("L2")}, NextLink: "page-2"},
			{Value: []mlsgrid.PropertyRecord{feedRecord("L3")}},
		},
	}
	listingRepo := newFakeListingRepo()
	mediaRepo := newFakeMediaRepo()
	metadataRepo := newFakeMetadataRepo()

	svc := NewIngestionService(feed, listingRepo, mediaRepo, metadataRepo, 100)
	summary, err := svc.Run(context.Background(), IngestionOptions{})

	require.NoError(t, err)
	assert.Equal(t, 3, summary.RecordsProcessed)
	assert.Equal(t, 3, summary.ListingsCreated)
	assert.Equal(t, 0, summary.ListingsUpdated)
	assert.Equal(t, 2, feed.fetches)
	assert.Len(t, listingRepo.listings, 3)
	assert.Len(t, mediaRepo.galleries, 3)
	assert.NotEmpty(t, metadataRepo.values[LastPopulateRunKey])
}

func TestIngestionRunCountsUpdates(t *testing.T) {
	feed := &fakeFeed{
		pages: []*mlsgrid.PropertiesResponse{
			{Value: []mlsgrid.PropertyRecord{feedRecord("L1")}},
		},
	}
	listingRepo := newFakeListingRepo()
	svc := NewIngestionService(feed, listingRepo, newFakeMediaRepo(), newFakeMetadataRepo(), 100)

	_, err := svc.Run(context.Background(), IngestionOptions{})
	require.NoError(t, err)
	summary, err := svc.Run(context.Background(), IngestionOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.ListingsCreated)
	assert.Equal(t, 1, summary.ListingsUpdated)
}

func TestIngestionRunSkipsHiddenAndIncompleteRecords(t *testing.T) {
	hidden := feedRecord("L2")
	canView := false
	hidden.MlgCanView = &canView

	feed := &fakeFeed{
		pages: []*mlsgrid.PropertiesResponse{
			{Value: []mlsgrid.PropertyRecord{feedRecord("L1"), hidden, {ListingID: ""}}},
		},
	}
	listingRepo := newFakeListingRepo()
	svc := NewIngestionService(feed, listingRepo, newFakeMediaRepo(), newFakeMetadataRepo(), 100)

	summary, err := svc.Run(context.Background(), IngestionOptions{})

	require.NoError(t, err)
	assert.Equal(t, 3, summary.RecordsProcessed)
	assert.Equal(t, 1, summary.ListingsCreated)
	assert.Equal(t, 2, summary.ListingsSkipped)
	assert.Len(t, listingRepo.listings, 1)
}

func TestIngestionRunClearWipesStore(t *testing.T) {
	feed := &fakeFeed{
		pages: []*mlsgrid.PropertiesResponse{
			{Value: []mlsgrid.PropertyRecord{feedRecord("L9")}},
		},
	}
	listingRepo := newFakeListingRepo()
	listingRepo.listings["stale"] = &entities.Listing{ID: "stale"}

	svc := NewIngestionService(feed, listingRepo, newFakeMediaRepo(), newFakeMetadataRepo(), 100)
	summary, err := svc.Run(context.Background(), IngestionOptions{Clear: true})

	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Cleared)
	_, stale := listingRepo.listings["stale"]
	assert.False(t, stale)
	assert.Len(t, listingRepo.listings, 1)
}

func TestIngestionRunHonorsMaxRecords(t *testing.T) {
	feed := &fakeFeed{
		pages: []*mlsgrid.PropertiesResponse{
			{Value: []mlsgrid.PropertyRecord{feedRecord("L1"), feedRecord("L2")}, NextLink: "page-2"},
			{Value: []mlsgrid.PropertyRecord{feedRecord("L3")}},
		},
	}
	svc := NewIngestionService(feed, newFakeListingRepo(), newFakeMediaRepo(), newFakeMetadataRepo(), 100)

	summary, err := svc.Run(context.Background(), IngestionOptions{MaxRecords: 2})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.RecordsProcessed)
	assert.Equal(t, 1, feed.fetches, "paging should stop once the cap is reached")
}

func TestLastPopulateRunMissingIsNil(t *testing.T) {
	svc := NewIngestionService(&fakeFeed{}, newFakeListingRepo(), newFakeMediaRepo(), newFakeMetadataRepo(), 100)

	ts, err := svc.LastPopulateRun(context.Background())

	require.NoError(t, err)
	assert.Nil(t, ts)
}

func TestLastPopulateRunPropagatesStoreError(t *testing.T) {
	metadataRepo := newFakeMetadataRepo()
	metadataRepo.getErr = apperrors.NewInternalError("metadata store unavailable", nil)
	svc := NewIngestionService(&fakeFeed{}, newFakeListingRepo(), newFakeMediaRepo(), metadataRepo, 100)

	ts, err := svc.LastPopulateRun(context.Background())

	require.Error(t, err)
	assert.Nil(t, ts)
	assert.False(t, apperrors.IsNotFound(err))
}

func TestLastPopulateRunRejectsCorruptTimestamp(t *testing.T) {
	metadataRepo := newFakeMetadataRepo()
	metadataRepo.values[LastPopulateRunKey] = "not-a-timestamp"
	svc := NewIngestionService(&fakeFeed{}, newFakeListingRepo(), newFakeMediaRepo(), metadataRepo, 100)

	ts, err := svc.LastPopulateRun(context.Background())

	require.Error(t, err)
	assert.Nil(t, ts)
}
