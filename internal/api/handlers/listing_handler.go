package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/allode/property-backend/internal/application/services"
	"github.com/allode/property-backend/internal/domain/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListingHandler handles listing search and detail requests
type ListingHandler struct {
	listingRepo repositories.ListingRepository
	mediaRepo   repositories.MediaRepository
	ingestion   *services.IngestionService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(
	listingRepo repositories.ListingRepository,
	mediaRepo repositories.MediaRepository,
	ingestion *services.IngestionService,
) *ListingHandler {
	return &ListingHandler{
		listingRepo: listingRepo,
		mediaRepo:   mediaRepo,
		ingestion:   ingestion,
	}
}

// ListListings handles GET /api/properties
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListingFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	listings, total, err := h.listingRepo.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	offset := (filter.Page - 1) * filter.PageSize
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"properties": listings,
		"total":      total,
		"page":       filter.Page,
		"pageSize":   filter.PageSize,
		"hasMore":    offset+filter.PageSize < total,
		"totalPages": (total + filter.PageSize - 1) / filter.PageSize,
	})
}

// GetListing handles GET /api/properties/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "property ID is required")
		return
	}

	listing, err := h.listingRepo.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	media, err := h.mediaRepo.ListByListing(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	var lastPopulateRun *time.Time
	if h.ingestion != nil {
		lastPopulateRun, _ = h.ingestion.LastPopulateRun(r.Context())
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"property":        listing,
		"media":           media,
		"lastPopulateRun": lastPopulateRun,
	})
}

func parseListingFilter(r *http.Request) (repositories.ListingFilter, error) {
	q := r.URL.Query()

	filter := repositories.ListingFilter{
		Address:   q.Get("address"),
		ListingID: q.Get("listing_id"),
		City:      q.Get("city"),
		State:     q.Get("state"),
		ZipCode:   q.Get("zipcode"),
		SortBy:    strings.ToLower(strings.TrimSpace(q.Get("sort_by"))),
		Page:      1,
		PageSize:  defaultPageSize,
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, errInvalidParam("page")
		}
		filter.Page = page
	}
	if v := q.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			return filter, errInvalidParam("page_size")
		}
		if size > maxPageSize {
			size = maxPageSize
		}
		filter.PageSize = size
	}
	if v := q.Get("min_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price < 0 {
			return filter, errInvalidParam("min_price")
		}
		filter.MinPrice = &price
	}
	if v := q.Get("max_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price < 0 {
			return filter, errInvalidParam("max_price")
		}
		filter.MaxPrice = &price
	}
	if v := q.Get("bedrooms"); v != "" {
		beds, err := strconv.Atoi(v)
		if err != nil || beds < 0 {
			return filter, errInvalidParam("bedrooms")
		}
		filter.Bedrooms = &beds
	}
	if v := q.Get("bathrooms"); v != "" {
		baths, err := strconv.Atoi(v)
		if err != nil || baths < 0 {
			return filter, errInvalidParam("bathrooms")
		}
		filter.Bathrooms = &baths
	}
	if v := q.Get("home_type"); v != "" {
		filter.HomeTypes = splitCSV(v)
	}
	if v := q.Get("status"); v != "" {
		filter.Statuses = splitCSV(v)
	}
	if v := q.Get("internet_address_display"); v != "" {
		display, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errInvalidParam("internet_address_display")
		}
		filter.InternetAddressDisplay = &display
	}

	return filter, nil
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type invalidParamError struct {
	name string
}

func errInvalidParam(name string) error {
	return &invalidParamError{name: name}
}

func (e *invalidParamError) Error() string {
	return "invalid value for parameter " + e.name
}
