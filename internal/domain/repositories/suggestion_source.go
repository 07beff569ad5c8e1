package repositories

import "context"

// SuggestionQuery parameterizes one candidate-source aggregation pass. The
// pattern is a SQL LIKE pattern matched case-insensitively; Exclude lists
// grouping-key values already emitted by an earlier pass for the same source
// so a contains pass never re-emits a prefix hit.
type SuggestionQuery struct {
	Pattern string
	Exclude []string
	Limit   int
}

// ZipCodeGroup is one postal code shared by Count listings, with the
// denormalized location of the group.
type ZipCodeGroup struct {
	PostalCode string
	City       string
	State      string
	Count      int
}

// AddressRow is one listing eligible as an address suggestion. Address
// candidates are per-listing, never aggregated.
type AddressRow struct {
	UnparsedAddress string
	City            string
	State           string
	ListingID       string
}

// CityGroup is one (city, state) pair shared by Count listings.
type CityGroup struct {
	City  string
	State string
	Count int
}

// StateGroup is one state shared by Count listings.
type StateGroup struct {
	State string
	Count int
}

// SuggestionSource exposes the four read-only aggregations the autocomplete
// engine draws candidates from. Implementations must match patterns
// case-insensitively and apply the per-source eligibility filters: zip
// requires postal_code, address requires street_number and city, city and
// state require their grouping column non-null. Denormalized location
// columns may be absent and come back as empty strings.
type SuggestionSource interface {
	ZipCodeGroups(ctx context.Context, q SuggestionQuery) ([]ZipCodeGroup, error)
	AddressRows(ctx context.Context, q SuggestionQuery) ([]AddressRow, error)
	CityGroups(ctx context.Context, q SuggestionQuery) ([]CityGroup, error)
	StateGroups(ctx context.Context, q SuggestionQuery) ([]StateGroup, error)
}
