package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allode/property-backend/internal/domain/entities"
	"github.com/allode/property-backend/internal/infrastructure/clients/mlsgrid"
)

// TransformProperty maps one RESO Property record to a Listing and its
// gallery. The listing id is the feed's ListingId so ingestion is
// idempotent across runs.
func TransformProperty(record mlsgrid.PropertyRecord) (*entities.Listing, []*entities.ListingMedia) {
	listing := &entities.Listing{
		ID:                     record.ListingID,
		ListingID:              record.ListingID,
		ListingKey:             record.ListingKey,
		ListPrice:              record.ListPrice,
		StreetNumber:           record.StreetNumber,
		StreetName:             record.StreetName,
		City:                   record.City,
		StateOrProvince:        record.StateOrProvince,
		PostalCode:             record.PostalCode,
		UnparsedAddress:        record.UnparsedAddress,
		PropertyType:           record.PropertyType,
		PropertySubType:        record.PropertySubType,
		BedroomsTotal:          record.BedroomsTotal,
		BathroomsTotal:         record.BathroomsTotalInteger,
		LivingArea:             record.LivingArea,
		LotSizeSquareFeet:      record.LotSizeSquareFeet,
		YearBuilt:              record.YearBuilt,
		StandardStatus:         deriveStatus(record.StandardStatus),
		HomeType:               deriveHomeType(record.PropertyType, record.PropertySubType),
		Latitude:               record.Latitude,
		Longitude:              record.Longitude,
		PublicRemarks:          record.PublicRemarks,
		ListAgentFullName:      record.ListAgentFullName,
		ListAgentEmail:         record.ListAgentEmail,
		ListAgentPhone:         record.ListAgentPhone,
		InternetAddressDisplay: record.InternetAddressDisplayYN,
		ListDate:               parseFeedTime(record.ListDate),
		ModificationTimestamp:  parseFeedTime(record.ModificationTimestamp),
	}

	media := transformMedia(record)
	listing.MediaCount = len(media)
	if primary := entities.PrimaryMedia(media); primary != nil {
		url := primary.MediaURL
		listing.PrimaryImageURL = &url
	}

	return listing, media
}

func transformMedia(record mlsgrid.PropertyRecord) []*entities.ListingMedia {
	media := make([]*entities.ListingMedia, 0, len(record.Media))
	for i, m := range record.Media {
		if m.MediaURL == "" {
			continue
		}
		order := i
		if m.Order != nil {
			order = *m.Order
		}
		id := m.MediaKey
		if id == "" {
			id = uuid.New().String()
		}
		media = append(media, &entities.ListingMedia{
			ID:        id,
			ListingID: record.ListingID,
			MediaKey:  m.MediaKey,
			MediaURL:  m.MediaURL,
			Order:     order,
			Preferred: m.PreferredPhotoYN,
			Width:     m.ImageWidth,
			Height:    m.ImageHeight,
			Category:  m.MediaCategory,
		})
	}
	return media
}

// deriveStatus folds RESO StandardStatus values into the three buckets the
// frontend filters on: For Sale, Pending, Sold. Unrecognized statuses pass
// through unchanged.
func deriveStatus(status *string) *string {
	if status == nil {
		return nil
	}
	var derived string
	switch strings.ToLower(strings.TrimSpace(*status)) {
	case "active", "active under contract", "coming soon":
		derived = "For Sale"
	case "pending":
		derived = "Pending"
	case "closed", "sold":
		derived = "Sold"
	default:
		derived = *status
	}
	return &derived
}

// deriveHomeType folds PropertyType/PropertySubType into the coarse home
// type vocabulary exposed as a search filter.
func deriveHomeType(propertyType, subType *string) *string {
	pt := ""
	if propertyType != nil {
		pt = strings.ToLower(*propertyType)
	}
	st := ""
	if subType != nil {
		st = strings.ToLower(*subType)
	}

	var homeType string
	switch {
	case strings.Contains(st, "single family"):
		homeType = "Single Family"
	case strings.Contains(st, "condo"):
		homeType = "Condo"
	case strings.Contains(st, "townhouse") || strings.Contains(st, "townhome"):
		homeType = "Townhouse"
	case strings.Contains(st, "manufactured") || strings.Contains(st, "mobile"):
		homeType = "Manufactured"
	case strings.Contains(st, "multi") || strings.Contains(pt, "multi"):
		homeType = "Multi Family"
	case strings.Contains(pt, "land") || strings.Contains(st, "land"):
		homeType = "Land"
	case pt == "" && st == "":
		return nil
	default:
		homeType = "Other"
	}
	return &homeType
}

// parseFeedTime accepts the two timestamp layouts the feed emits.
func parseFeedTime(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, *value); err == nil {
			return &t
		}
	}
	return nil
}
