package mlsgrid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/allode/property-backend/pkg/config"
)

// Client is the upstream MLS Grid (RESO Web API) data provider.
type Client interface {
	// GetProperties fetches one page of property records. Pass the
	// NextLink of the previous response to continue paging; an empty
	// NextLink in the response means the feed is exhausted.
	GetProperties(ctx context.Context, req PropertiesRequest) (*PropertiesResponse, error)

	// FetchImage downloads one listing photo from its MLS-hosted URL.
	FetchImage(ctx context.Context, mediaURL string) ([]byte, string, error)
}

// PropertiesRequest parameterizes one page fetch.
type PropertiesRequest struct {
	Top      int
	NextLink string
}

// PropertiesResponse is one page of the RESO Property resource.
type PropertiesResponse struct {
	Value    []PropertyRecord `json:"value"`
	NextLink string           `json:"@odata.nextLink"`
}

// PropertyRecord carries the RESO fields this backend consumes. Pointer
// fields are frequently absent from the feed.
type PropertyRecord struct {
	ListingID       string  `json:"ListingId"`
	ListingKey      string  `json:"ListingKey"`
	ListPrice       *int64  `json:"ListPrice"`
	StreetNumber    *string `json:"StreetNumber"`
	StreetName      *string `json:"StreetName"`
	City            *string `json:"City"`
	StateOrProvince *string `json:"StateOrProvince"`
	PostalCode      *string `json:"PostalCode"`
	UnparsedAddress *string `json:"UnparsedAddress"`

	PropertyType          *string  `json:"PropertyType"`
	PropertySubType       *string  `json:"PropertySubType"`
	BedroomsTotal         *int     `json:"BedroomsTotal"`
	BathroomsTotalInteger *int     `json:"BathroomsTotalInteger"`
	LivingArea            *int     `json:"LivingArea"`
	LotSizeSquareFeet     *float64 `json:"LotSizeSquareFeet"`
	YearBuilt             *int     `json:"YearBuilt"`
	StandardStatus        *string  `json:"StandardStatus"`

	Latitude  *float64 `json:"Latitude"`
	Longitude *float64 `json:"Longitude"`

	PublicRemarks *string `json:"PublicRemarks"`

	ListAgentFullName *string `json:"ListAgentFullName"`
	ListAgentEmail    *string `json:"ListAgentEmail"`
	ListAgentPhone    *string `json:"ListAgentPhone"`

	InternetAddressDisplayYN *bool `json:"InternetAddressDisplayYN"`
	MlgCanView               *bool `json:"MlgCanView"`

	ListDate              *string `json:"ListDate"`
	ModificationTimestamp *string `json:"ModificationTimestamp"`

	Media []MediaRecord `json:"Media"`
}

// MediaRecord is one photo entry from the expanded Media navigation.
type MediaRecord struct {
	MediaKey         string `json:"MediaKey"`
	MediaURL         string `json:"MediaURL"`
	Order            *int   `json:"Order"`
	PreferredPhotoYN bool   `json:"PreferredPhotoYN"`
	ImageWidth       *int   `json:"ImageWidth"`
	ImageHeight      *int   `json:"ImageHeight"`
	MediaCategory    string `json:"MediaCategory"`
}

// HTTPClient implements Client against the MLS Grid REST endpoint.
type HTTPClient struct {
	baseURL           string
	bearerToken       string
	originatingSystem string
	httpClient        *http.Client
}

func NewClient(cfg *config.MLSGridConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		bearerToken:       cfg.BearerToken,
		originatingSystem: cfg.OriginatingSystem,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPClient) GetProperties(ctx context.Context, req PropertiesRequest) (*PropertiesResponse, error) {
	endpoint := req.NextLink
	if endpoint == "" {
		filter := fmt.Sprintf("OriginatingSystemName eq '%s' and MlgCanView eq true", c.originatingSystem)
		params := url.Values{}
		params.Set("$filter", filter)
		params.Set("$expand", "Media")
		if req.Top > 0 {
			params.Set("$top", fmt.Sprintf("%d", req.Top))
		}
		endpoint = fmt.Sprintf("%s/Property?%s", c.baseURL, params.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("mlsgrid: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.bearerToken)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mlsgrid: fetch properties: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("mlsgrid: properties request failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page PropertiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("mlsgrid: decode properties page: %w", err)
	}

	return &page, nil
}

func (c *HTTPClient) FetchImage(ctx context.Context, mediaURL string) ([]byte, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("mlsgrid: build image request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("mlsgrid: fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("mlsgrid: image request failed: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("mlsgrid: read image body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return body, contentType, nil
}
