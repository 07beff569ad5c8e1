package handlers_test

import (
	"context"
	"errors"

	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/domain/providers"
	"github.com/allode/property-backend/internal/domain/repositories"
	"github.com/allode/property-backend/internal/infrastructure/clients/mlsgrid"
	apperrors "github.com/allode/property-backend/pkg/errors"
)

type stubListingRepo struct {
	listings   map[string]*entities.Listing
	total      int
	lastFilter repositories.ListingFilter
	listErr    error
	mirrored   map[string]string
}

func newStubListingRepo(listings ...*entities.Listing) *stubListingRepo {
	repo := &stubListingRepo{
		listings: make(map[string]*entities.Listing),
		mirrored: make(map[string]string),
	}
	for _, l := range listings {
		repo.listings[l.ID] = l
	}
	repo.total = len(listings)
	return repo
}

func (r *stubListingRepo) GetByID(ctx context.Context, id string) (*entities.Listing, error) {
	listing, ok := r.listings[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("listing not found")
	}
	return listing, nil
}

func (r *stubListingRepo) List(ctx context.Context, filter repositories.ListingFilter) ([]*entities.Listing, int, error) {
	r.lastFilter = filter
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	var out []*entities.Listing
	for _, l := range r.listings {
		out = append(out, l)
	}
	return out, r.total, nil
}

func (r *stubListingRepo) Upsert(ctx context.Context, listing *entities.Listing) (bool, error) {
	_, existed := r.listings[listing.ID]
	r.listings[listing.ID] = listing
	return !existed, nil
}

func (r *stubListingRepo) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(r.listings))
	r.listings = make(map[string]*entities.Listing)
	return n, nil
}

func (r *stubListingRepo) Count(ctx context.Context) (int, error) {
	return len(r.listings), nil
}

func (r *stubListingRepo) SetPrimaryImageMirror(ctx context.Context, id, r2Key, r2URL string) error {
	if _, ok := r.listings[id]; !ok {
		return apperrors.NewNotFoundError("listing not found")
	}
	r.mirrored[id] = r2Key
	return nil
}

func (r *stubListingRepo) IDsNeedingMirror(ctx context.Context, limit int) ([]string, error) {
	return nil, nil
}

type stubMediaRepo struct {
	galleries map[string][]*entities.ListingMedia
	mirrored  map[string]string
}

func newStubMediaRepo() *stubMediaRepo {
	return &stubMediaRepo{
		galleries: make(map[string][]*entities.ListingMedia),
		mirrored:  make(map[string]string),
	}
}

func (r *stubMediaRepo) ListByListing(ctx context.Context, listingID string) ([]*entities.ListingMedia, error) {
	return r.galleries[listingID], nil
}

func (r *stubMediaRepo) ReplaceForListing(ctx context.Context, listingID string, media []*entities.ListingMedia) error {
	r.galleries[listingID] = media
	return nil
}

func (r *stubMediaRepo) SetMirror(ctx context.Context, mediaID, r2Key, r2URL string) error {
	r.mirrored[mediaID] = r2Key
	return nil
}

func (r *stubMediaRepo) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(r.galleries))
	r.galleries = make(map[string][]*entities.ListingMedia)
	return n, nil
}

func (r *stubMediaRepo) Count(ctx context.Context) (int, error) {
	total := 0
	for _, g := range r.galleries {
		total += len(g)
	}
	return total, nil
}

type stubMetadataRepo struct {
	values map[string]string
}

func newStubMetadataRepo() *stubMetadataRepo {
	return &stubMetadataRepo{values: make(map[string]string)}
}

func (r *stubMetadataRepo) Get(ctx context.Context, key string) (string, error) {
	value, ok := r.values[key]
	if !ok {
		return "", apperrors.NewNotFoundError("metadata key not found")
	}
	return value, nil
}

func (r *stubMetadataRepo) Set(ctx context.Context, key, value string) error {
	r.values[key] = value
	return nil
}

type stubFeed struct {
	pages  []*mlsgrid.PropertiesResponse
	images map[string][]byte
}

func (f *stubFeed) GetProperties(ctx context.Context, req mlsgrid.PropertiesRequest) (*mlsgrid.PropertiesResponse, error) {
	if len(f.pages) == 0 {
		return &mlsgrid.PropertiesResponse{}, nil
	}
	if req.NextLink == "" {
		return f.pages[0], nil
	}
	for i, page := range f.pages[:len(f.pages)-1] {
		if page.NextLink == req.NextLink {
			return f.pages[i+1], nil
		}
	}
	return &mlsgrid.PropertiesResponse{}, nil
}

func (f *stubFeed) FetchImage(ctx context.Context, mediaURL string) ([]byte, string, error) {
	body, ok := f.images[mediaURL]
	if !ok {
		return nil, "", errors.New("image not found")
	}
	return body, "image/jpeg", nil
}

type stubObjectStore struct {
	objects map[string][]byte
}

func newStubObjectStore() *stubObjectStore {
	return &stubObjectStore{objects: make(map[string][]byte)}
}

func (s *stubObjectStore) Put(ctx context.Context, key string, body []byte, contentType string) (*providers.StoredObject, error) {
	s.objects[key] = body
	return &providers.StoredObject{
		Key:         key,
		URL:         "https://cdn.example.com/" + key,
		Size:        int64(len(body)),
		ContentType: contentType,
	}, nil
}

func (s *stubObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

func strp(s string) *string { return &s }
