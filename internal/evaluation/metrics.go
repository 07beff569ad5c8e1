package evaluation

import (
	"strings"

	"github.com/allode/property-backend/internal/domain/entities"
)

// Expected values match retrieved suggestions case-insensitively on the
// suggestion value. A "kind:value" entry additionally pins the producing
// source, so a golden query can require that "98101" arrive as a zipcode
// rather than as the tail of an address suggestion.
func matchesExpected(expected string, s entities.Suggestion) bool {
	want := strings.ToLower(strings.TrimSpace(expected))
	if kind, value, ok := strings.Cut(want, ":"); ok && isSuggestionKind(kind) {
		return string(s.Kind) == kind && strings.EqualFold(s.Value, value)
	}
	return strings.EqualFold(s.Value, want)
}

func isSuggestionKind(k string) bool {
	switch entities.SuggestionKind(k) {
	case entities.SuggestionZipCode, entities.SuggestionAddress,
		entities.SuggestionCity, entities.SuggestionState:
		return true
	}
	return false
}

// RecallAtK is the fraction of expected values present in the top k
// suggestions. Returns 0 when the query has no expected values.
func RecallAtK(expected []string, retrieved []entities.Suggestion, k int) float64 {
	if len(expected) == 0 {
		return 0
	}
	topK := retrieved
	if k < len(topK) {
		topK = topK[:k]
	}

	found := 0
	for _, want := range expected {
		for _, s := range topK {
			if matchesExpected(want, s) {
				found++
				break
			}
		}
	}

	return float64(found) / float64(len(expected))
}

// MRRAtK is the reciprocal rank of the first expected value among the top k
// suggestions, or 0 when none of them appears.
func MRRAtK(expected []string, retrieved []entities.Suggestion, k int) float64 {
	topK := retrieved
	if k < len(topK) {
		topK = topK[:k]
	}

	for i, s := range topK {
		for _, want := range expected {
			if matchesExpected(want, s) {
				return 1.0 / float64(i+1)
			}
		}
	}

	return 0
}
