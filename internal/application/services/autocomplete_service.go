package services

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/domain/repositories"
	"github.com/allode/property-backend/pkg/address"
)

// AutocompleteService turns a partial keystroke sequence into a ranked list
// of heterogeneous suggestions drawn from the four candidate sources.
type AutocompleteService struct {
	source repositories.SuggestionSource
}

// NewAutocompleteService creates a new autocomplete service
func NewAutocompleteService(source repositories.SuggestionSource) *AutocompleteService {
	return &AutocompleteService{source: source}
}

// Suggest executes the classifier-chosen source plan and composes one
// ranked, deduplicated, limit-truncated suggestion list. Any source failure
// aborts the whole request; a partial list under a deterministic-ordering
// contract would be misleading.
func (s *AutocompleteService) Suggest(ctx context.Context, query string, limit int) ([]entities.Suggestion, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []entities.Suggestion{}, nil
	}

	classification := Classify(trimmed)
	plan := BuildPlan(classification, limit)

	prefixPattern := trimmed + "%"
	containsPattern := "%" + trimmed + "%"

	var suggestions []entities.Suggestion
	for _, pass := range plan {
		budget := pass.Budget
		if pass.Remainder {
			budget = limit - len(suggestions)
		}
		if budget <= 0 {
			continue
		}

		prefixHits, keys, err := s.querySource(ctx, pass.Kind, repositories.SuggestionQuery{
			Pattern: prefixPattern,
			Limit:   budget,
		}, entities.RelevancePrefix)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, prefixHits...)

		// The contains pass runs only when the prefix pass left budget
		// unfilled, and never re-emits a prefix key.
		remaining := budget - len(prefixHits)
		if remaining <= 0 {
			continue
		}

		containsHits, _, err := s.querySource(ctx, pass.Kind, repositories.SuggestionQuery{
			Pattern: containsPattern,
			Exclude: keys,
			Limit:   remaining,
		}, entities.RelevanceContains)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, containsHits...)
	}

	suggestions = dedupe(suggestions)
	sortSuggestions(suggestions, classification)

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// querySource runs one pass against one candidate source and maps the rows
// to suggestions. The second return value lists the grouping keys emitted,
// for exclusion by a later contains pass.
func (s *AutocompleteService) querySource(ctx context.Context, kind entities.SuggestionKind, q repositories.SuggestionQuery, relevance entities.Relevance) ([]entities.Suggestion, []string, error) {
	switch kind {
	case entities.SuggestionZipCode:
		groups, err := s.source.ZipCodeGroups(ctx, q)
		if err != nil {
			return nil, nil, err
		}
		suggestions := make([]entities.Suggestion, 0, len(groups))
		keys := make([]string, 0, len(groups))
		for _, g := range groups {
			suggestions = append(suggestions, zipSuggestion(g, relevance))
			keys = append(keys, g.PostalCode)
		}
		return suggestions, keys, nil

	case entities.SuggestionAddress:
		rows, err := s.source.AddressRows(ctx, q)
		if err != nil {
			return nil, nil, err
		}
		suggestions := make([]entities.Suggestion, 0, len(rows))
		keys := make([]string, 0, len(rows))
		for _, r := range rows {
			suggestions = append(suggestions, addressSuggestion(r, relevance))
			keys = append(keys, r.UnparsedAddress)
		}
		return suggestions, keys, nil

	case entities.SuggestionCity:
		groups, err := s.source.CityGroups(ctx, q)
		if err != nil {
			return nil, nil, err
		}
		suggestions := make([]entities.Suggestion, 0, len(groups))
		keys := make([]string, 0, len(groups))
		for _, g := range groups {
			suggestions = append(suggestions, citySuggestion(g, relevance))
			keys = append(keys, g.City)
		}
		return suggestions, keys, nil

	default:
		groups, err := s.source.StateGroups(ctx, q)
		if err != nil {
			return nil, nil, err
		}
		suggestions := make([]entities.Suggestion, 0, len(groups))
		keys := make([]string, 0, len(groups))
		for _, g := range groups {
			suggestions = append(suggestions, stateSuggestion(g, relevance))
			keys = append(keys, g.State)
		}
		return suggestions, keys, nil
	}
}

func zipSuggestion(g repositories.ZipCodeGroup, relevance entities.Relevance) entities.Suggestion {
	display := formatCount(g.PostalCode, g.Count)
	if g.City != "" {
		display = formatCount(g.PostalCode+" - "+g.City+", "+g.State, g.Count)
	}
	return entities.Suggestion{
		Kind:      entities.SuggestionZipCode,
		Value:     g.PostalCode,
		ZipCode:   g.PostalCode,
		City:      g.City,
		State:     g.State,
		Count:     g.Count,
		Display:   display,
		Relevance: relevance,
	}
}

func addressSuggestion(r repositories.AddressRow, relevance entities.Relevance) entities.Suggestion {
	normalized := address.Normalize(r.UnparsedAddress)
	return entities.Suggestion{
		Kind:       entities.SuggestionAddress,
		Value:      normalized,
		City:       r.City,
		State:      r.State,
		Count:      1,
		Display:    normalized,
		Relevance:  relevance,
		PropertyID: r.ListingID,
	}
}

func citySuggestion(g repositories.CityGroup, relevance entities.Relevance) entities.Suggestion {
	value := g.City
	if g.State != "" {
		value = g.City + ", " + g.State
	}
	return entities.Suggestion{
		Kind:      entities.SuggestionCity,
		Value:     value,
		City:      g.City,
		State:     g.State,
		Count:     g.Count,
		Display:   formatCount(value, g.Count),
		Relevance: relevance,
	}
}

func stateSuggestion(g repositories.StateGroup, relevance entities.Relevance) entities.Suggestion {
	return entities.Suggestion{
		Kind:      entities.SuggestionState,
		Value:     g.State,
		State:     g.State,
		Count:     g.Count,
		Display:   formatCount(g.State, g.Count),
		Relevance: relevance,
	}
}

func formatCount(label string, count int) string {
	return label + " (" + strconv.Itoa(count) + " properties)"
}

// dedupe drops later suggestions whose dedup key repeats an earlier one.
// Normalization can collapse two differently formatted address rows into
// the same display string; only the first survives.
func dedupe(suggestions []entities.Suggestion) []entities.Suggestion {
	seen := make(map[string]struct{}, len(suggestions))
	out := suggestions[:0]
	for _, s := range suggestions {
		key := string(s.Kind) + "\x00" + dedupeKey(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func dedupeKey(s entities.Suggestion) string {
	switch s.Kind {
	case entities.SuggestionAddress:
		return strings.ToLower(s.Value)
	case entities.SuggestionCity:
		return strings.ToLower(s.City) + "\x00" + strings.ToLower(s.State)
	default:
		return strings.ToLower(s.Value)
	}
}

// sortSuggestions orders the working list by the composite relevance key:
// prefix before contains, then classifier-dependent type priority, then
// aggregate count descending, then display case-insensitively. The final
// key makes the order total, so identical requests are byte-identical.
func sortSuggestions(suggestions []entities.Suggestion, c Classification) {
	priority := typePriority(c)
	sort.Slice(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if (a.Relevance == entities.RelevancePrefix) != (b.Relevance == entities.RelevancePrefix) {
			return a.Relevance == entities.RelevancePrefix
		}
		if priority[a.Kind] != priority[b.Kind] {
			return priority[a.Kind] < priority[b.Kind]
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return strings.ToLower(a.Display) < strings.ToLower(b.Display)
	})
}

func typePriority(c Classification) map[entities.SuggestionKind]int {
	if c.NumericLead {
		return map[entities.SuggestionKind]int{
			entities.SuggestionZipCode: 0,
			entities.SuggestionAddress: 1,
			entities.SuggestionCity:    2,
			entities.SuggestionState:   3,
		}
	}
	return map[entities.SuggestionKind]int{
		entities.SuggestionState:   0,
		entities.SuggestionCity:    1,
		entities.SuggestionAddress: 2,
		entities.SuggestionZipCode: 3,
	}
}
