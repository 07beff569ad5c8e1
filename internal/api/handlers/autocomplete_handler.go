package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/allode/property-backend/internal/application/services"
	"github.com/allode/property-backend/internal/domain/entities"
)

const (
	defaultSuggestionLimit = 10
	maxSuggestionLimit     = 20
)

// AutocompleteHandler handles typeahead suggestion requests
type AutocompleteHandler struct {
	autocomplete *services.AutocompleteService
}

// NewAutocompleteHandler creates a new autocomplete handler
func NewAutocompleteHandler(autocomplete *services.AutocompleteService) *AutocompleteHandler {
	return &AutocompleteHandler{autocomplete: autocomplete}
}

// Suggest handles GET /api/autocomplete. Queries shorter than two
// characters after trimming yield an empty result, not an error.
func (h *AutocompleteHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 2 {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"suggestions": []entities.Suggestion{},
		})
		return
	}

	limit := defaultSuggestionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}

	suggestions, err := h.autocomplete.Suggest(r.Context(), query, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}
