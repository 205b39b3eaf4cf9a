// Package googleplaces adapts the Google Places web service (text search, nearby lodging
// search and place details) to normalized Place and Hotel records.
package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	ProviderName = "google_places"

	DefaultBaseURL       = "https://maps.googleapis.com/maps/api/place"
	DefaultTimeout       = 10 * time.Second
	DefaultLodgingRadius = 5000

	detailFields = "name,rating,user_ratings_total,formatted_address,geometry,price_level,website,opening_hours"
)

type Client struct {
	baseURL       string
	apiKey        string
	lodgingRadius int
	httpClient    *http.Client
	logger        *slog.Logger
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithLodgingRadius sets the nearby search radius in meters used for hotels.
func WithLodgingRadius(meters int) ClientOption {
	return func(c *Client) {
		if meters > 0 {
			c.lodgingRadius = meters
		}
	}
}

func NewClient(apiKey string, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		apiKey:        apiKey,
		lodgingRadius: DefaultLodgingRadius,
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		logger:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return ProviderName }

// SearchPlaces runs a text search such as "museums in Paris, France".
func (c *Client) SearchPlaces(ctx context.Context, query string) ([]types.Place, error) {
	ctx, span := otel.Tracer("GooglePlaces").Start(ctx, "SearchPlaces", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()

	var resp searchResponse
	if err := c.get(ctx, "/textsearch/json", url.Values{"query": {query}}, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "text search failed")
		return nil, err
	}

	places := make([]types.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		places = append(places, r.toPlace())
	}
	span.SetAttributes(attribute.Int("results", len(places)))
	return places, nil
}

// PlaceDetails looks up opening hours, price level and website for one place.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (types.PlaceDetails, error) {
	ctx, span := otel.Tracer("GooglePlaces").Start(ctx, "PlaceDetails", trace.WithAttributes(
		attribute.String("place.id", placeID),
	))
	defer span.End()

	var resp detailsResponse
	params := url.Values{"place_id": {placeID}, "fields": {detailFields}}
	if err := c.get(ctx, "/details/json", params, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "details lookup failed")
		return types.PlaceDetails{}, err
	}
	return resp.Result.toDetails(), nil
}

// SearchHotels resolves the destination to coordinates, then searches lodging around it.
func (c *Client) SearchHotels(ctx context.Context, q types.HotelQuery) ([]types.Hotel, error) {
	ctx, span := otel.Tracer("GooglePlaces").Start(ctx, "SearchHotels", trace.WithAttributes(
		attribute.String("city", q.City),
		attribute.Int("radius_m", c.lodgingRadius),
	))
	defer span.End()

	var found findPlaceResponse
	params := url.Values{
		"input":     {q.City + ", " + q.Country},
		"inputtype": {"textquery"},
		"fields":    {"place_id,geometry"},
	}
	if err := c.get(ctx, "/findplacefromtext/json", params, &found); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "destination lookup failed")
		return nil, err
	}
	if len(found.Candidates) == 0 {
		return nil, nil
	}

	loc := found.Candidates[0].Geometry.Location
	var nearby searchResponse
	params = url.Values{
		"location": {strconv.FormatFloat(loc.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(loc.Lng, 'f', -1, 64)},
		"radius":   {strconv.Itoa(c.lodgingRadius)},
		"type":     {"lodging"},
	}
	if err := c.get(ctx, "/nearbysearch/json", params, &nearby); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lodging search failed")
		return nil, err
	}

	hotels := make([]types.Hotel, 0, len(nearby.Results))
	for _, r := range nearby.Results {
		hotels = append(hotels, types.Hotel{Place: r.toPlace()})
	}
	span.SetAttributes(attribute.Int("results", len(hotels)))
	return hotels, nil
}

// HotelDetails is a place details lookup; Google lodging results are regular places.
func (c *Client) HotelDetails(ctx context.Context, placeID string) (types.PlaceDetails, error) {
	return c.PlaceDetails(ctx, placeID)
}

type statusEnvelope interface {
	apiStatus() (status, message string)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out statusEnvelope) error {
	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "Google Places request", slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &types.ProviderError{Provider: ProviderName, StatusCode: http.StatusServiceUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &types.ProviderError{Provider: ProviderName, StatusCode: resp.StatusCode, Message: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &types.ProviderError{Provider: ProviderName, StatusCode: http.StatusBadGateway, Message: "malformed response: " + err.Error()}
	}

	status, message := out.apiStatus()
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	default:
		if message == "" {
			message = status
		}
		return &types.ProviderError{Provider: ProviderName, StatusCode: statusCode(status), Message: message}
	}
}

// statusCode maps a Places API status onto the closest HTTP status.
func statusCode(status string) int {
	switch status {
	case "INVALID_REQUEST":
		return http.StatusBadRequest
	case "REQUEST_DENIED":
		return http.StatusForbidden
	case "NOT_FOUND":
		return http.StatusNotFound
	case "OVER_QUERY_LIMIT":
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
