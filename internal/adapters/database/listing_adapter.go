package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/domain/repositories"
	"github.com/allode/property-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/allode/property-backend/pkg/errors"
)

var listingColumns = []interface{}{
	"id", "listing_id", "listing_key", "list_price",
	"street_number", "street_name", "city", "state_or_province", "postal_code", "unparsed_address",
	"property_type", "property_sub_type", "bedrooms_total", "bathrooms_total",
	"living_area", "lot_size_square_feet", "year_built", "standard_status", "home_type",
	"latitude", "longitude", "public_remarks",
	"list_agent_full_name", "list_agent_email", "list_agent_phone",
	"internet_address_display", "list_date", "modification_timestamp",
	"media_count", "primary_image_url", "primary_image_r2_key", "primary_image_r2_url", "primary_image_stored_at",
	"created_at", "updated_at",
}

// ListingAdapter implements ListingRepository over Postgres
type ListingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewListingAdapter creates a new listing adapter
func NewListingAdapter(client *postgres.Client) repositories.ListingRepository {
	return &ListingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a listing by ID
func (a *ListingAdapter) GetByID(ctx context.Context, id string) (*entities.Listing, error) {
	query, args, err := a.db.Select(listingColumns...).
		From("listings").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	listing, err := scanListing(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("listing with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get listing", err)
	}

	return listing, nil
}

// List returns one page of listings plus the pre-pagination total.
func (a *ListingAdapter) List(ctx context.Context, filter repositories.ListingFilter) ([]*entities.Listing, int, error) {
	ds := a.db.From("listings")
	ds = applyListingFilter(ds, filter)

	countQuery, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count listings", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	ds = ds.Select(listingColumns...).
		Order(sortExpressions(filter.SortBy)...).
		Limit(uint(pageSize)).
		Offset(uint((page - 1) * pageSize))

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list listings", err)
	}
	defer rows.Close()

	var listings []*entities.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, 0, apperrors.NewInternalError("failed to scan listing", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to iterate listings", err)
	}

	return listings, total, nil
}

// Upsert inserts or updates a listing row keyed by id. Reports whether a new
// row was created.
func (a *ListingAdapter) Upsert(ctx context.Context, listing *entities.Listing) (bool, error) {
	now := time.Now().UTC()

	record := goqu.Record{
		"id":                       listing.ID,
		"listing_id":               listing.ListingID,
		"listing_key":              sql.NullString{String: listing.ListingKey, Valid: listing.ListingKey != ""},
		"list_price":               nullInt64(listing.ListPrice),
		"street_number":            nullString(listing.StreetNumber),
		"street_name":              nullString(listing.StreetName),
		"city":                     nullString(listing.City),
		"state_or_province":        nullString(listing.StateOrProvince),
		"postal_code":              nullString(listing.PostalCode),
		"unparsed_address":         nullString(listing.UnparsedAddress),
		"property_type":            nullString(listing.PropertyType),
		"property_sub_type":        nullString(listing.PropertySubType),
		"bedrooms_total":           nullInt(listing.BedroomsTotal),
		"bathrooms_total":          nullInt(listing.BathroomsTotal),
		"living_area":              nullInt(listing.LivingArea),
		"lot_size_square_feet":     nullFloat(listing.LotSizeSquareFeet),
		"year_built":               nullInt(listing.YearBuilt),
		"standard_status":          nullString(listing.StandardStatus),
		"home_type":                nullString(listing.HomeType),
		"latitude":                 nullFloat(listing.Latitude),
		"longitude":                nullFloat(listing.Longitude),
		"public_remarks":           nullString(listing.PublicRemarks),
		"list_agent_full_name":     nullString(listing.ListAgentFullName),
		"list_agent_email":         nullString(listing.ListAgentEmail),
		"list_agent_phone":         nullString(listing.ListAgentPhone),
		"internet_address_display": nullBool(listing.InternetAddressDisplay),
		"list_date":                nullTime(listing.ListDate),
		"modification_timestamp":   nullTime(listing.ModificationTimestamp),
		"media_count":              listing.MediaCount,
		"primary_image_url":        nullString(listing.PrimaryImageURL),
		"created_at":               now,
		"updated_at":               now,
	}

	// The conflict update leaves created_at and the mirror columns
	// untouched, so re-ingesting a listing never discards an already
	// uploaded photo.
	update := goqu.Record{}
	for column := range record {
		if column == "id" || column == "created_at" {
			continue
		}
		update[column] = goqu.L("EXCLUDED." + column)
	}

	query, args, err := a.db.Insert("listings").
		Rows(record).
		OnConflict(goqu.DoUpdate("id", update)).
		Returning(goqu.L("(created_at = updated_at)")).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build upsert query", err)
	}

	var inserted bool
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&inserted); err != nil {
		return false, apperrors.NewInternalError("failed to upsert listing", err)
	}

	return inserted, nil
}

// DeleteAll removes every listing and returns the number deleted
func (a *ListingAdapter) DeleteAll(ctx context.Context) (int64, error) {
	query, args, err := a.db.Delete("listings").ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build delete query", err)
	}

	res, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to delete listings", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to read rows affected", err)
	}

	return deleted, nil
}

// Count returns the number of listings
func (a *ListingAdapter) Count(ctx context.Context) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).From("listings").ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count listings", err)
	}

	return count, nil
}

// SetPrimaryImageMirror records the mirrored cover-photo location
func (a *ListingAdapter) SetPrimaryImageMirror(ctx context.Context, id, r2Key, r2URL string) error {
	query, args, err := a.db.Update("listings").
		Set(goqu.Record{
			"primary_image_r2_key":    r2Key,
			"primary_image_r2_url":    r2URL,
			"primary_image_stored_at": time.Now().UTC(),
			"updated_at":              time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	res, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to set primary image mirror", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read rows affected", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("listing with id %s not found", id))
	}

	return nil
}

// IDsNeedingMirror returns listing ids with a primary image but no mirror
func (a *ListingAdapter) IDsNeedingMirror(ctx context.Context, limit int) ([]string, error) {
	ds := a.db.Select("id").
		From("listings").
		Where(
			goqu.C("primary_image_url").IsNotNull(),
			goqu.C("primary_image_r2_key").IsNull(),
		).
		Order(goqu.C("id").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query listings needing mirror", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewInternalError("failed to scan listing id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate listing ids", err)
	}

	return ids, nil
}

func applyListingFilter(ds *goqu.SelectDataset, filter repositories.ListingFilter) *goqu.SelectDataset {
	if filter.Address != "" {
		ds = ds.Where(goqu.C("unparsed_address").ILike("%" + filter.Address + "%"))
	}
	if filter.ListingID != "" {
		ds = ds.Where(goqu.Ex{"listing_id": filter.ListingID})
	}
	if filter.City != "" {
		ds = ds.Where(goqu.C("city").ILike(filter.City))
	}
	if filter.State != "" {
		ds = ds.Where(goqu.C("state_or_province").ILike(filter.State))
	}
	if filter.ZipCode != "" {
		ds = ds.Where(goqu.Ex{"postal_code": filter.ZipCode})
	}
	if filter.MinPrice != nil {
		ds = ds.Where(goqu.C("list_price").Gte(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		ds = ds.Where(goqu.C("list_price").Lte(*filter.MaxPrice))
	}
	if filter.Bedrooms != nil {
		ds = ds.Where(goqu.C("bedrooms_total").Gte(*filter.Bedrooms))
	}
	if filter.Bathrooms != nil {
		ds = ds.Where(goqu.C("bathrooms_total").Gte(*filter.Bathrooms))
	}
	if len(filter.HomeTypes) > 0 {
		ds = ds.Where(goqu.Ex{"home_type": filter.HomeTypes})
	}
	if len(filter.Statuses) > 0 {
		ds = ds.Where(goqu.Ex{"standard_status": filter.Statuses})
	}
	if filter.InternetAddressDisplay != nil {
		ds = ds.Where(goqu.Ex{"internet_address_display": *filter.InternetAddressDisplay})
	}
	return ds
}

// sortExpressions maps a sort key to ORDER BY expressions. Nullable sort
// columns push NULLs last so unpriced or unmeasured listings do not lead.
func sortExpressions(sortBy string) []exp.OrderedExpression {
	switch sortBy {
	case "price_asc":
		return []exp.OrderedExpression{goqu.C("list_price").Asc().NullsLast(), goqu.C("id").Asc()}
	case "sqft_desc":
		return []exp.OrderedExpression{goqu.C("living_area").Desc().NullsLast(), goqu.C("id").Asc()}
	case "lot_size_desc":
		return []exp.OrderedExpression{goqu.C("lot_size_square_feet").Desc().NullsLast(), goqu.C("id").Asc()}
	case "beds_desc":
		return []exp.OrderedExpression{goqu.C("bedrooms_total").Desc().NullsLast(), goqu.C("id").Asc()}
	case "baths_desc":
		return []exp.OrderedExpression{goqu.C("bathrooms_total").Desc().NullsLast(), goqu.C("id").Asc()}
	default:
		return []exp.OrderedExpression{goqu.C("list_price").Desc().NullsLast(), goqu.C("id").Asc()}
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*entities.Listing, error) {
	listing := &entities.Listing{}

	var (
		listingKey                                         sql.NullString
		listPrice                                          sql.NullInt64
		streetNumber, streetName, city, state, postalCode  sql.NullString
		unparsedAddress, propertyType, propertySubType     sql.NullString
		bedrooms, bathrooms, livingArea, yearBuilt         sql.NullInt64
		lotSize, latitude, longitude                       sql.NullFloat64
		standardStatus, homeType, publicRemarks            sql.NullString
		agentName, agentEmail, agentPhone                  sql.NullString
		internetAddressDisplay                             sql.NullBool
		listDate, modificationTimestamp, primaryStoredAt   sql.NullTime
		primaryImageURL, primaryR2Key, primaryR2URL        sql.NullString
	)

	err := row.Scan(
		&listing.ID,
		&listing.ListingID,
		&listingKey,
		&listPrice,
		&streetNumber,
		&streetName,
		&city,
		&state,
		&postalCode,
		&unparsedAddress,
		&propertyType,
		&propertySubType,
		&bedrooms,
		&bathrooms,
		&livingArea,
		&lotSize,
		&yearBuilt,
		&standardStatus,
		&homeType,
		&latitude,
		&longitude,
		&publicRemarks,
		&agentName,
		&agentEmail,
		&agentPhone,
		&internetAddressDisplay,
		&listDate,
		&modificationTimestamp,
		&listing.MediaCount,
		&primaryImageURL,
		&primaryR2Key,
		&primaryR2URL,
		&primaryStoredAt,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if listingKey.Valid {
		listing.ListingKey = listingKey.String
	}
	listing.ListPrice = int64Ptr(listPrice)
	listing.StreetNumber = stringPtr(streetNumber)
	listing.StreetName = stringPtr(streetName)
	listing.City = stringPtr(city)
	listing.StateOrProvince = stringPtr(state)
	listing.PostalCode = stringPtr(postalCode)
	listing.UnparsedAddress = stringPtr(unparsedAddress)
	listing.PropertyType = stringPtr(propertyType)
	listing.PropertySubType = stringPtr(propertySubType)
	listing.BedroomsTotal = intPtr(bedrooms)
	listing.BathroomsTotal = intPtr(bathrooms)
	listing.LivingArea = intPtr(livingArea)
	listing.LotSizeSquareFeet = floatPtr(lotSize)
	listing.YearBuilt = intPtr(yearBuilt)
	listing.StandardStatus = stringPtr(standardStatus)
	listing.HomeType = stringPtr(homeType)
	listing.Latitude = floatPtr(latitude)
	listing.Longitude = floatPtr(longitude)
	listing.PublicRemarks = stringPtr(publicRemarks)
	listing.ListAgentFullName = stringPtr(agentName)
	listing.ListAgentEmail = stringPtr(agentEmail)
	listing.ListAgentPhone = stringPtr(agentPhone)
	listing.InternetAddressDisplay = boolPtr(internetAddressDisplay)
	listing.ListDate = timePtr(listDate)
	listing.ModificationTimestamp = timePtr(modificationTimestamp)
	listing.PrimaryImageURL = stringPtr(primaryImageURL)
	listing.PrimaryImageR2Key = stringPtr(primaryR2Key)
	listing.PrimaryImageR2URL = stringPtr(primaryR2URL)
	listing.PrimaryImageStoredAt = timePtr(primaryStoredAt)

	return listing, nil
}
