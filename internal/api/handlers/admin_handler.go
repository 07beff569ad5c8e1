package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/allode/property-backend/internal/application/services"
)

// AdminHandler exposes the operational endpoints that trigger feed ingestion
// and photo mirroring.
type AdminHandler struct {
	ingestion *services.IngestionService
	mirror    *services.PhotoMirrorService
}

// NewAdminHandler creates a new admin handler. mirror may be nil when object
// storage is not configured.
func NewAdminHandler(ingestion *services.IngestionService, mirror *services.PhotoMirrorService) *AdminHandler {
	return &AdminHandler{ingestion: ingestion, mirror: mirror}
}

// Populate handles POST /api/admin/populate
func (h *AdminHandler) Populate(w http.ResponseWriter, r *http.Request) {
	opts := services.IngestionOptions{}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.MaxRecords = limit
	}
	if v := r.URL.Query().Get("clear"); v != "" {
		clear, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "clear must be a boolean")
			return
		}
		opts.Clear = clear
	}

	summary, err := h.ingestion.Run(r.Context(), opts)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"message":             fmt.Sprintf("populated %d properties", summary.ListingsCreated+summary.ListingsUpdated),
		"properties_inserted": summary.ListingsCreated + summary.ListingsUpdated,
		"media_items":         summary.MediaItems,
		"limit_requested":     opts.MaxRecords,
		"cleared":             summary.Cleared,
	})
}

// ProcessImages handles POST /api/properties/{id}/process-images
func (h *AdminHandler) ProcessImages(w http.ResponseWriter, r *http.Request) {
	if h.mirror == nil {
		respondWithError(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "property ID is required")
		return
	}

	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "force must be a boolean")
			return
		}
		force = parsed
	}

	if err := h.mirror.MirrorListing(r.Context(), id, force); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"property_id": id,
		"forced":      force,
	})
}
