package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/domain/repositories"
)

// fakeSource serves the four aggregations from in-memory slices, applying
// the same pattern/exclude/limit semantics the SQL adapter does. It records
// every invocation so tests can assert which passes executed.
type fakeSource struct {
	zips      []repositories.ZipCodeGroup
	addresses []repositories.AddressRow
	cities    []repositories.CityGroup
	states    []repositories.StateGroup

	calls []string
	err   error
}

func likeMatch(value, pattern string) bool {
	v := strings.ToLower(value)
	p := strings.ToLower(pattern)
	if strings.HasPrefix(p, "%") && strings.HasSuffix(p, "%") {
		return strings.Contains(v, strings.Trim(p, "%"))
	}
	if strings.HasSuffix(p, "%") {
		return strings.HasPrefix(v, strings.TrimSuffix(p, "%"))
	}
	return v == p
}

func excluded(value string, exclude []string) bool {
	for _, e := range exclude {
		if value == e {
			return true
		}
	}
	return false
}

func (f *fakeSource) ZipCodeGroups(_ context.Context, q repositories.SuggestionQuery) ([]repositories.ZipCodeGroup, error) {
	f.calls = append(f.calls, "zip:"+q.Pattern)
	if f.err != nil {
		return nil, f.err
	}
	var out []repositories.ZipCodeGroup
	for _, g := range f.zips {
		if likeMatch(g.PostalCode, q.Pattern) && !excluded(g.PostalCode, q.Exclude) {
			out = append(out, g)
		}
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSource) AddressRows(_ context.Context, q repositories.SuggestionQuery) ([]repositories.AddressRow, error) {
	f.calls = append(f.calls, "address:"+q.Pattern)
	if f.err != nil {
		return nil, f.err
	}
	var out []repositories.AddressRow
	for _, r := range f.addresses {
		if likeMatch(r.UnparsedAddress, q.Pattern) && !excluded(r.UnparsedAddress, q.Exclude) {
			out = append(out, r)
		}
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSource) CityGroups(_ context.Context, q repositories.SuggestionQuery) ([]repositories.CityGroup, error) {
	f.calls = append(f.calls, "city:"+q.Pattern)
	if f.err != nil {
		return nil, f.err
	}
	var out []repositories.CityGroup
	for _, g := range f.cities {
		if likeMatch(g.City, q.Pattern) && !excluded(g.City, q.Exclude) {
			out = append(out, g)
		}
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSource) StateGroups(_ context.Context, q repositories.SuggestionQuery) ([]repositories.StateGroup, error) {
	f.calls = append(f.calls, "state:"+q.Pattern)
	if f.err != nil {
		return nil, f.err
	}
	var out []repositories.StateGroup
	for _, g := range f.states {
		if likeMatch(g.State, q.Pattern) && !excluded(g.State, q.Exclude) {
			out = append(out, g)
		}
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func TestSuggestCityPrefixRanking(t *testing.T) {
	source := &fakeSource{
		cities: []repositories.CityGroup{
			{City: "Seatac", State: "WA", Count: 1},
			{City: "Seattle", State: "WA", Count: 3},
			{City: "Spokane", State: "WA", Count: 1},
		},
		states: []repositories.StateGroup{{State: "WA", Count: 5}},
	}
	svc := NewAutocompleteService(source)

	suggestions, err := svc.Suggest(context.Background(), "Sea", 10)

	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, entities.SuggestionCity, suggestions[0].Kind)
	assert.Equal(t, "Seattle, WA", suggestions[0].Value)
	assert.Equal(t, 3, suggestions[0].Count)
	assert.Equal(t, "Seattle, WA (3 properties)", suggestions[0].Display)
	assert.Equal(t, entities.RelevancePrefix, suggestions[0].Relevance)
	assert.Equal(t, "Seatac, WA", suggestions[1].Value)
}

func TestSuggestCityWithoutStateUsesBareName(t *testing.T) {
	source := &fakeSource{
		cities: []repositories.CityGroup{
			{City: "Seaview", State: "", Count: 2},
		},
	}
	svc := NewAutocompleteService(source)

	suggestions, err := svc.Suggest(context.Background(), "Sea", 10)

	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Seaview", suggestions[0].Value)
	assert.Empty(t, suggestions[0].State)
	assert.Equal(t, "Seaview (2 properties)", suggestions[0].Display)
}

func TestSuggestZipCandidateRanksZipFirst(t *testing.T) {
	source := &fakeSource{
		zips: []repositories.ZipCodeGroup{
			{PostalCode: "98101", City: "Seattle", State: "WA", Count: 4},
		},
		addresses: []repositories.AddressRow{
			{UnparsedAddress: "98101 Rainier Ave, Seattle, WA", City: "Seattle", State: "WA", ListingID: "L1"},
		},
	}
	svc := NewAutocompleteService(source)

	suggestions, err := svc.Suggest(context.Background(), "98101", 10)

	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, entities.SuggestionZipCode, suggestions[0].Kind)
	assert.Equal(t, "98101", suggestions[0].ZipCode)
	assert.Equal(t, 4, suggestions[0].Count)
	assert.Equal(t, "98101 - Seattle, WA (4 properties)", suggestions[0].Display)
	assert.Equal(t, entities.SuggestionAddress, suggestions[1].Kind)
	assert.Equal(t, "L1", suggestions[1].PropertyID)
	assert.Equal(t, 1, suggestions[1].Count)
}

func TestSuggestEmptyQuerySkipsStore(t *testing.T) {
	source := &fakeSource{}
	svc := NewAutocompleteService(source)

	suggestions, err := svc.Suggest(context.Background(), "   ", 10)

	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.Empty(t, source.calls, "no source query should execute for a blank query")
}

func TestSuggestContainsOnlyWhenBudgetUnfilled(t *testing.T) {
	source := &fakeSource{
		addresses: []repositories.AddressRow{
			{UnparsedAddress: "200 E 1105 Spring Rd, Tacoma, WA", City: "Tacoma", State: "WA", ListingID: "L7"},
		},
	}
	svc := NewAutocompleteService(source)

	suggestions, err := svc.Suggest(context.Background(), "1105 Spring", 10)

	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, entities.SuggestionAddress, suggestions[0].Kind)
	assert.Equal(t, entities.RelevanceContains, suggestions[0].Relevance)
	assert.Contains(t, source.calls, "address:1105 Spring%")
	assert.Contains(t, source.calls, "address:%1105 Spring%")
}

func TestSuggestContainsSkippedWhenPrefixFillsBudget(t *testing.T) {
	var addresses []repositories.AddressRow
	for _, street := range []string{"Alder", "Birch", "Cedar"} {
		addresses = append(addresses, repositories.AddressRow{
			UnparsedAddress: "1105 " + street + " St, Seattle, WA",
			City:            "Seattle",
			State:           "WA",
			ListingID:       street,
		})
	}
	source := &fakeSource{addresses: addresses}
	svc := NewAutocompleteService(source)

	suggestions, err := svc.Suggest(context.Background(), "1105", 3)

	require.NoError(t, err)
	assert.Len(t, suggestions, 3)
	for _, call := range source.calls {
		assert.NotEqual(t, "address:%1105%", call, "contains pass must not run when the prefix pass filled the budget")
	}
}

func TestSuggestPrefixSortsBeforeContains(t *testing.T) {
	source := &fakeSource{
		cities: []repositories.CityGroup{
			{City: "Kent", State: "WA", Count: 50},
			{City: "Kenmore", State: "WA", Count: 2},
			{City: "Spokenford", State: "WA", Count: 99},
		},
		states: []repositories.StateGroup{},
	}
	svc := NewAutocompleteService(source)

	suggestions, err := svc.Suggest(context.Background(), "Ken", 10)

	require.NoError(t, err)
	require.Len(t, suggestions, 3)
	assert.Equal(t, entities.RelevancePrefix, suggestions[0].Relevance)
	assert.Equal(t, entities.RelevancePrefix, suggestions[1].Relevance)
	assert.Equal(t, "Kent", suggestions[0].City)
	assert.Equal(t, entities.RelevanceContains, suggestions[2].Relevance)
	assert.Equal(t, "Spokenford", suggestions[2].City, "a bigger count never outranks a prefix match")
}

func TestSuggestNeverExceedsLimit(t *testing.T) {
	source := &fakeSource{
		states: []repositories.StateGroup{{State: "WA", Count: 10}, {State: "WV", Count: 4}},
		cities: []repositories.CityGroup{
			{City: "Walla Walla", State: "WA", Count: 7},
			{City: "Wenatchee", State: "WA", Count: 5},
			{City: "Woodinville", State: "WA", Count: 3},
		},
	}
	svc := NewAutocompleteService(source)

	suggestions, err := svc.Suggest(context.Background(), "W", 3)

	require.NoError(t, err)
	assert.Len(t, suggestions, 3)
	assert.Equal(t, entities.SuggestionState, suggestions[0].Kind)
}

func TestSuggestDeterministicOrdering(t *testing.T) {
	source := &fakeSource{
		cities: []repositories.CityGroup{
			{City: "Seatac", State: "WA", Count: 2},
			{City: "Seaview", State: "WA", Count: 2},
			{City: "Seattle", State: "WA", Count: 2},
		},
	}
	svc := NewAutocompleteService(source)

	first, err := svc.Suggest(context.Background(), "Sea", 10)
	require.NoError(t, err)
	second, err := svc.Suggest(context.Background(), "Sea", 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Equal counts fall back to display order.
	assert.Equal(t, "Seatac", first[0].City)
	assert.Equal(t, "Seattle", first[1].City)
	assert.Equal(t, "Seaview", first[2].City)
}

func TestSuggestCollapsesNormalizedAddressDuplicates(t *testing.T) {
	source := &fakeSource{
		addresses: []repositories.AddressRow{
			{UnparsedAddress: "9810 spring st, Seattle, WA", City: "Seattle", State: "WA", ListingID: "L1"},
			{UnparsedAddress: "9810  SPRING  ST, Seattle, WA", City: "Seattle", State: "WA", ListingID: "L2"},
		},
	}
	svc := NewAutocompleteService(source)

	suggestions, err := svc.Suggest(context.Background(), "9810 spring", 10)

	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "L1", suggestions[0].PropertyID)
}

func TestSuggestSourceFailureAbortsRequest(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	svc := NewAutocompleteService(source)

	_, err := svc.Suggest(context.Background(), "Seattle", 10)

	require.Error(t, err)
}
