package handlers

import (
	"net/http"
	"strconv"

	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/domain/repositories"
)

const (
	imageSourceMirror   = "r2"
	imageSourceOriginal = "original"
)

// ImageHandler resolves gallery image URLs, preferring mirrored copies in
// object storage over the original feed URLs.
type ImageHandler struct {
	listingRepo repositories.ListingRepository
	mediaRepo   repositories.MediaRepository
}

// NewImageHandler creates a new image handler
func NewImageHandler(listingRepo repositories.ListingRepository, mediaRepo repositories.MediaRepository) *ImageHandler {
	return &ImageHandler{listingRepo: listingRepo, mediaRepo: mediaRepo}
}

// ResolveImage handles GET /api/images/{id}/{index}. Index 0 is the listing's
// cover photo; higher indexes walk the gallery in display order, skipping the
// row that duplicates the cover.
func (h *ImageHandler) ResolveImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		respondWithError(w, http.StatusBadRequest, "image index must be a non-negative integer")
		return
	}

	listing, err := h.listingRepo.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	url, source, ok := "", "", false
	if index == 0 {
		url, source, ok = coverImage(listing)
	} else {
		url, source, ok, err = h.galleryImage(r, listing, index)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "image not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"url":         url,
		"source":      source,
		"property_id": id,
		"image_index": index,
	})
}

func coverImage(listing *entities.Listing) (string, string, bool) {
	if listing.PrimaryImageR2URL != nil && *listing.PrimaryImageR2URL != "" {
		return *listing.PrimaryImageR2URL, imageSourceMirror, true
	}
	if listing.PrimaryImageURL != nil && *listing.PrimaryImageURL != "" {
		return *listing.PrimaryImageURL, imageSourceOriginal, true
	}
	return "", "", false
}

func (h *ImageHandler) galleryImage(r *http.Request, listing *entities.Listing, index int) (string, string, bool, error) {
	media, err := h.mediaRepo.ListByListing(r.Context(), listing.ID)
	if err != nil {
		return "", "", false, err
	}

	// The cover photo already occupies index 0, so its gallery row is
	// skipped here to avoid serving the same image twice.
	gallery := media[:0:0]
	for _, m := range media {
		if listing.PrimaryImageURL != nil && m.MediaURL == *listing.PrimaryImageURL {
			continue
		}
		gallery = append(gallery, m)
	}

	pos := index - 1
	if pos >= len(gallery) {
		return "", "", false, nil
	}

	m := gallery[pos]
	if m.R2URL != nil && *m.R2URL != "" {
		return *m.R2URL, imageSourceMirror, true, nil
	}
	return m.MediaURL, imageSourceOriginal, true, nil
}
