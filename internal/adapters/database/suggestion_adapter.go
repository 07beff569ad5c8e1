package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/allode/property-backend/internal/domain/repositories"
	"github.com/allode/property-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/allode/property-backend/pkg/errors"
)

// SuggestionAdapter implements SuggestionSource over the listings table.
// Each method is a read-only aggregation; patterns match case-insensitively
// via ILIKE and every source applies its own eligibility filter.
type SuggestionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSuggestionAdapter creates a new suggestion adapter
func NewSuggestionAdapter(client *postgres.Client) repositories.SuggestionSource {
	return &SuggestionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ZipCodeGroups aggregates listings by postal code. City and state come from
// an arbitrary listing in the group, which is stable enough for display.
func (a *SuggestionAdapter) ZipCodeGroups(ctx context.Context, q repositories.SuggestionQuery) ([]repositories.ZipCodeGroup, error) {
	ds := a.db.Select(
		goqu.C("postal_code"),
		goqu.MIN("city").As("city"),
		goqu.MIN("state_or_province").As("state"),
		goqu.COUNT("*").As("count"),
	).From("listings").
		Where(
			goqu.C("postal_code").IsNotNull(),
			goqu.C("postal_code").ILike(q.Pattern),
		)
	if len(q.Exclude) > 0 {
		ds = ds.Where(goqu.C("postal_code").NotIn(q.Exclude))
	}
	ds = ds.GroupBy("postal_code").
		Order(goqu.COUNT("*").Desc(), goqu.C("postal_code").Asc())
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build zip query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query zip groups", err)
	}
	defer rows.Close()

	var groups []repositories.ZipCodeGroup
	for rows.Next() {
		var g repositories.ZipCodeGroup
		var city, state sql.NullString
		if err := rows.Scan(&g.PostalCode, &city, &state, &g.Count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan zip group", err)
		}
		g.City = city.String
		g.State = state.String
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate zip groups", err)
	}

	return groups, nil
}

// AddressRows returns individual listings whose address matches the pattern.
// A listing qualifies only when its street number and city are both present.
func (a *SuggestionAdapter) AddressRows(ctx context.Context, q repositories.SuggestionQuery) ([]repositories.AddressRow, error) {
	ds := a.db.Select(
		goqu.C("unparsed_address"),
		goqu.C("city"),
		goqu.C("state_or_province"),
		goqu.C("id"),
	).From("listings").
		Where(
			goqu.C("unparsed_address").IsNotNull(),
			goqu.C("street_number").IsNotNull(),
			goqu.C("city").IsNotNull(),
			goqu.C("unparsed_address").ILike(q.Pattern),
		)
	if len(q.Exclude) > 0 {
		ds = ds.Where(goqu.C("unparsed_address").NotIn(q.Exclude))
	}
	ds = ds.Order(goqu.C("unparsed_address").Asc())
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build address query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query address rows", err)
	}
	defer rows.Close()

	var result []repositories.AddressRow
	for rows.Next() {
		var r repositories.AddressRow
		var state sql.NullString
		if err := rows.Scan(&r.UnparsedAddress, &r.City, &state, &r.ListingID); err != nil {
			return nil, apperrors.NewInternalError("failed to scan address row", err)
		}
		r.State = state.String
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate address rows", err)
	}

	return result, nil
}

// CityGroups aggregates listings by (city, state)
func (a *SuggestionAdapter) CityGroups(ctx context.Context, q repositories.SuggestionQuery) ([]repositories.CityGroup, error) {
	ds := a.db.Select(
		goqu.C("city"),
		goqu.C("state_or_province"),
		goqu.COUNT("*").As("count"),
	).From("listings").
		Where(
			goqu.C("city").IsNotNull(),
			goqu.C("city").ILike(q.Pattern),
		)
	if len(q.Exclude) > 0 {
		ds = ds.Where(goqu.C("city").NotIn(q.Exclude))
	}
	ds = ds.GroupBy("city", "state_or_province").
		Order(goqu.COUNT("*").Desc(), goqu.C("city").Asc())
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build city query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query city groups", err)
	}
	defer rows.Close()

	var groups []repositories.CityGroup
	for rows.Next() {
		var g repositories.CityGroup
		var state sql.NullString
		if err := rows.Scan(&g.City, &state, &g.Count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan city group", err)
		}
		g.State = state.String
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate city groups", err)
	}

	return groups, nil
}

// StateGroups aggregates listings by state
func (a *SuggestionAdapter) StateGroups(ctx context.Context, q repositories.SuggestionQuery) ([]repositories.StateGroup, error) {
	ds := a.db.Select(
		goqu.C("state_or_province"),
		goqu.COUNT("*").As("count"),
	).From("listings").
		Where(
			goqu.C("state_or_province").IsNotNull(),
			goqu.C("state_or_province").ILike(q.Pattern),
		)
	if len(q.Exclude) > 0 {
		ds = ds.Where(goqu.C("state_or_province").NotIn(q.Exclude))
	}
	ds = ds.GroupBy("state_or_province").
		Order(goqu.COUNT("*").Desc(), goqu.C("state_or_province").Asc())
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build state query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query state groups", err)
	}
	defer rows.Close()

	var groups []repositories.StateGroup
	for rows.Next() {
		var g repositories.StateGroup
		if err := rows.Scan(&g.State, &g.Count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan state group", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate state groups", err)
	}

	return groups, nil
}
