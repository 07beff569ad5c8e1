package entities

import "time"

// Listing is one real-estate listing as normalized from the MLS feed.
// String pointers model feed fields that are frequently absent; the
// autocomplete sources treat a nil StreetNumber or City as "not complete
// enough to suggest as an address".
type Listing struct {
	ID        string `json:"id"`
	ListingID string `json:"mlsNumber"`
	ListingKey string `json:"listingKey,omitempty"`

	ListPrice *int64 `json:"price,omitempty"`

	StreetNumber    *string `json:"streetNumber,omitempty"`
	StreetName      *string `json:"streetName,omitempty"`
	City            *string `json:"city,omitempty"`
	StateOrProvince *string `json:"state,omitempty"`
	PostalCode      *string `json:"zipCode,omitempty"`
	UnparsedAddress *string `json:"address,omitempty"`

	PropertyType    *string  `json:"propertyType,omitempty"`
	PropertySubType *string  `json:"propertySubType,omitempty"`
	BedroomsTotal   *int     `json:"bedrooms,omitempty"`
	BathroomsTotal  *int     `json:"bathrooms,omitempty"`
	LivingArea      *int     `json:"squareFeet,omitempty"`
	LotSizeSquareFeet *float64 `json:"lotSize,omitempty"`
	YearBuilt       *int     `json:"yearBuilt,omitempty"`
	StandardStatus  *string  `json:"status,omitempty"`
	HomeType        *string  `json:"homeType,omitempty"`

	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`

	PublicRemarks *string `json:"description,omitempty"`

	ListAgentFullName *string `json:"agentName,omitempty"`
	ListAgentEmail    *string `json:"agentEmail,omitempty"`
	ListAgentPhone    *string `json:"agentPhone,omitempty"`

	InternetAddressDisplay *bool `json:"internetAddressDisplay,omitempty"`

	ListDate              *time.Time `json:"listingDate,omitempty"`
	ModificationTimestamp *time.Time `json:"lastUpdated,omitempty"`

	MediaCount      int     `json:"mediaCount"`
	PrimaryImageURL *string `json:"primaryImageUrl,omitempty"`
	PrimaryImageR2Key *string `json:"-"`
	PrimaryImageR2URL *string `json:"primaryImageCdnUrl,omitempty"`
	PrimaryImageStoredAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ListingMedia is one photo belonging to a listing, ordered within the
// listing's gallery.
type ListingMedia struct {
	ID         string `json:"id"`
	ListingID  string `json:"listingId"`
	MediaKey   string `json:"mediaKey,omitempty"`
	MediaURL   string `json:"url"`
	Order      int    `json:"order"`
	Preferred  bool   `json:"isPreferred"`
	Width      *int   `json:"width,omitempty"`
	Height     *int   `json:"height,omitempty"`
	Category   string `json:"type,omitempty"`
	R2Key      *string `json:"-"`
	R2URL      *string `json:"cdnUrl,omitempty"`
	StoredAt   *time.Time `json:"-"`
	CreatedAt  time.Time  `json:"-"`
}

// PrimaryMedia picks the listing's cover photo from its gallery: the first
// row flagged preferred, else the row with the lowest order value. Returns
// nil for an empty gallery. The rule is explicit so callers never depend on
// incidental row order.
func PrimaryMedia(media []*ListingMedia) *ListingMedia {
	var best *ListingMedia
	for _, m := range media {
		if m.Preferred {
			if best == nil || !best.Preferred || m.Order < best.Order {
				best = m
			}
			continue
		}
		if best == nil || (!best.Preferred && m.Order < best.Order) {
			best = m
		}
	}
	return best
}
