package entities

// SuggestionKind identifies which candidate source produced a suggestion.
type SuggestionKind string

const (
	SuggestionZipCode SuggestionKind = "zipcode"
	SuggestionAddress SuggestionKind = "address"
	SuggestionCity    SuggestionKind = "city"
	SuggestionState   SuggestionKind = "state"
)

// Relevance records whether a suggestion matched the query as a prefix or
// only as a substring. Prefix matches always rank ahead of contains matches.
type Relevance string

const (
	RelevancePrefix   Relevance = "prefix"
	RelevanceContains Relevance = "contains"
)

// Suggestion is one ranked autocomplete result. It is request-scoped and
// never persisted.
type Suggestion struct {
	Kind       SuggestionKind `json:"type"`
	Value      string         `json:"value"`
	City       string         `json:"city"`
	State      string         `json:"state"`
	Count      int            `json:"count"`
	Display    string         `json:"display"`
	Relevance  Relevance      `json:"relevance"`
	PropertyID string         `json:"propertyId,omitempty"`
	ZipCode    string         `json:"zipCode,omitempty"`
}
