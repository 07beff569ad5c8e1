package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allode/property-backend/internal/api/handlers"
	"github.com/allode/property-backend/internal/application/services"
	"github.com/allode/property-backend/internal/domain/repositories"
)

type stubSuggestionSource struct {
	cities []repositories.CityGroup
	calls  int
	err    error
}

func (s *stubSuggestionSource) ZipCodeGroups(ctx context.Context, q repositories.SuggestionQuery) ([]repositories.ZipCodeGroup, error) {
	s.calls++
	return nil, s.err
}

func (s *stubSuggestionSource) AddressRows(ctx context.Context, q repositories.SuggestionQuery) ([]repositories.AddressRow, error) {
	s.calls++
	return nil, s.err
}

func (s *stubSuggestionSource) CityGroups(ctx context.Context, q repositories.SuggestionQuery) ([]repositories.CityGroup, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.cities) > q.Limit {
		return s.cities[:q.Limit], nil
	}
	return s.cities, nil
}

func (s *stubSuggestionSource) StateGroups(ctx context.Context, q repositories.SuggestionQuery) ([]repositories.StateGroup, error) {
	s.calls++
	return nil, s.err
}

func newAutocompleteHandler(source repositories.SuggestionSource) *handlers.AutocompleteHandler {
	return handlers.NewAutocompleteHandler(services.NewAutocompleteService(source))
}

type suggestionsResponse struct {
	Suggestions []struct {
		Type    string `json:"type"`
		Value   string `json:"value"`
		Display string `json:"display"`
		Count   int    `json:"count"`
	} `json:"suggestions"`
}

func TestAutocompleteHandler_Suggest_Success(t *testing.T) {
	source := &stubSuggestionSource{
		cities: []repositories.CityGroup{
			{City: "Seattle", State: "WA", Count: 3},
			{City: "Seatac", State: "WA", Count: 1},
		},
	}
	handler := newAutocompleteHandler(source)

	req := httptest.NewRequest("GET", "/api/autocomplete?q=Sea", nil)
	w := httptest.NewRecorder()

	handler.Suggest(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response suggestionsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response.Suggestions, 2)
	assert.Equal(t, "city", response.Suggestions[0].Type)
	assert.Equal(t, "Seattle, WA", response.Suggestions[0].Value)
	assert.Equal(t, "Seattle, WA (3 properties)", response.Suggestions[0].Display)
}

func TestAutocompleteHandler_Suggest_ShortQuerySkipsSource(t *testing.T) {
	source := &stubSuggestionSource{}
	handler := newAutocompleteHandler(source)

	for _, q := range []string{"", "S", "  S  "} {
		req := httptest.NewRequest("GET", "/api/autocomplete?q="+url.QueryEscape(q), nil)
		w := httptest.NewRecorder()

		handler.Suggest(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response suggestionsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Empty(t, response.Suggestions)
	}
	assert.Zero(t, source.calls)
}

func TestAutocompleteHandler_Suggest_InvalidLimit(t *testing.T) {
	handler := newAutocompleteHandler(&stubSuggestionSource{})

	req := httptest.NewRequest("GET", "/api/autocomplete?q=Seattle&limit=ten", nil)
	w := httptest.NewRecorder()

	handler.Suggest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAutocompleteHandler_Suggest_ClampsLimit(t *testing.T) {
	source := &stubSuggestionSource{}
	for i := 0; i < 40; i++ {
		source.cities = append(source.cities, repositories.CityGroup{
			City:  "Sea" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			State: "WA",
			Count: 1,
		})
	}
	handler := newAutocompleteHandler(source)

	req := httptest.NewRequest("GET", "/api/autocomplete?q=Sea&limit=100", nil)
	w := httptest.NewRecorder()

	handler.Suggest(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response suggestionsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.LessOrEqual(t, len(response.Suggestions), 20)
}

func TestAutocompleteHandler_Suggest_SourceFailure(t *testing.T) {
	handler := newAutocompleteHandler(&stubSuggestionSource{err: errors.New("connection refused")})

	req := httptest.NewRequest("GET", "/api/autocomplete?q=Seattle", nil)
	w := httptest.NewRecorder()

	handler.Suggest(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
