package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/domain/repositories"
	apperrors "github.com/allode/property-backend/pkg/errors"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return nil, apperrors.NewNotFoundError("cache miss")
	}
	return data, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok, nil
}

type countingListingRepo struct {
	listings map[string]*entities.Listing
	getCalls int
}

func (r *countingListingRepo) GetByID(ctx context.Context, id string) (*entities.Listing, error) {
	r.getCalls++
	listing, ok := r.listings[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("listing not found")
	}
	return listing, nil
}

func (r *countingListingRepo) List(ctx context.Context, filter repositories.ListingFilter) ([]*entities.Listing, int, error) {
	return nil, 0, nil
}

func (r *countingListingRepo) Upsert(ctx context.Context, listing *entities.Listing) (bool, error) {
	_, existed := r.listings[listing.ID]
	r.listings[listing.ID] = listing
	return !existed, nil
}

func (r *countingListingRepo) DeleteAll(ctx context.Context) (int64, error) {
	return 0, nil
}

func (r *countingListingRepo) Count(ctx context.Context) (int, error) {
	return len(r.listings), nil
}

func (r *countingListingRepo) SetPrimaryImageMirror(ctx context.Context, id, r2Key, r2URL string) error {
	return nil
}

func (r *countingListingRepo) IDsNeedingMirror(ctx context.Context, limit int) ([]string, error) {
	return nil, nil
}

func waitForCacheEntry(t *testing.T, cache *memoryCache, key string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if ok, _ := cache.Exists(context.Background(), key); ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("cache entry %s never appeared", key)
}

func TestCachedGetByIDServesSecondReadFromCache(t *testing.T) {
	city := "Seattle"
	repo := &countingListingRepo{listings: map[string]*entities.Listing{
		"L1": {ID: "L1", ListingID: "L1", City: &city},
	}}
	cache := newMemoryCache()
	adapter := NewCachedListingAdapter(repo, cache)

	first, err := adapter.GetByID(context.Background(), "L1")
	require.NoError(t, err)
	assert.Equal(t, "L1", first.ID)
	assert.Equal(t, 1, repo.getCalls)

	waitForCacheEntry(t, cache, "listing:L1")

	second, err := adapter.GetByID(context.Background(), "L1")
	require.NoError(t, err)
	assert.Equal(t, "L1", second.ID)
	require.NotNil(t, second.City)
	assert.Equal(t, "Seattle", *second.City)
	assert.Equal(t, 1, repo.getCalls)
}

func TestCachedGetByIDMissPassesThroughError(t *testing.T) {
	repo := &countingListingRepo{listings: map[string]*entities.Listing{}}
	adapter := NewCachedListingAdapter(repo, newMemoryCache())

	_, err := adapter.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCachedUpsertInvalidatesEntry(t *testing.T) {
	city := "Seattle"
	repo := &countingListingRepo{listings: map[string]*entities.Listing{
		"L1": {ID: "L1", ListingID: "L1", City: &city},
	}}
	cache := newMemoryCache()
	adapter := NewCachedListingAdapter(repo, cache)

	_, err := adapter.GetByID(context.Background(), "L1")
	require.NoError(t, err)
	waitForCacheEntry(t, cache, "listing:L1")

	updated := "Tacoma"
	_, err = adapter.Upsert(context.Background(), &entities.Listing{ID: "L1", ListingID: "L1", City: &updated})
	require.NoError(t, err)

	ok, _ := cache.Exists(context.Background(), "listing:L1")
	assert.False(t, ok)

	fresh, err := adapter.GetByID(context.Background(), "L1")
	require.NoError(t, err)
	require.NotNil(t, fresh.City)
	assert.Equal(t, "Tacoma", *fresh.City)
}
