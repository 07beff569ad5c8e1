package services

import "github.com/allode/property-backend/internal/domain/entities"

// SourcePass is one planned candidate-source invocation. Budget is the
// maximum number of suggestions the pass may contribute; Remainder marks a
// pass whose budget is whatever is left of the overall limit once earlier
// passes have emitted.
type SourcePass struct {
	Kind      entities.SuggestionKind
	Budget    int
	Remainder bool
}

// BuildPlan maps a classification to the ordered list of source passes and
// their budgets. The skew is deliberate: the query's primary type gets the
// largest budget and secondary types are capped low.
func BuildPlan(c Classification, limit int) []SourcePass {
	switch {
	case c.ZipCandidate:
		return []SourcePass{
			{Kind: entities.SuggestionZipCode, Budget: max(3, limit/2)},
			{Kind: entities.SuggestionAddress, Remainder: true},
		}
	case c.NumericLead:
		return []SourcePass{
			{Kind: entities.SuggestionAddress, Budget: limit},
			{Kind: entities.SuggestionCity, Budget: max(1, limit/3)},
		}
	default:
		return []SourcePass{
			{Kind: entities.SuggestionState, Budget: max(3, limit/2)},
			{Kind: entities.SuggestionCity, Budget: limit},
			{Kind: entities.SuggestionAddress, Budget: max(1, limit/3)},
		}
	}
}
