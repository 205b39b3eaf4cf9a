// Package expedia is a client for the Expedia Rapid API region, availability and
// content endpoints, mapped onto normalized Hotel records.
package expedia

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
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

	appMiddleware "github.com/FACorreiaa/go-travel-planner/app/middleware"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	ProviderName = "expedia"

	DefaultBaseURL       = "https://test.ean.com/v3"
	DefaultTimeout       = 15 * time.Second
	DefaultCustomerIP    = "127.0.0.1"
	DefaultMaxProperties = 50
)

type Client struct {
	baseURL       string
	apiKey        string
	apiSecret     string
	customerIP    string
	currency      string
	language      string
	countryCode   string
	maxProperties int
	httpClient    *http.Client
	logger        *slog.Logger
	now           func() time.Time
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithCustomerIP sets the Customer-Ip header Rapid requires on every call.
func WithCustomerIP(ip string) ClientOption {
	return func(c *Client) {
		if ip != "" {
			c.customerIP = ip
		}
	}
}

// WithLocale sets currency, language and point-of-sale country for availability requests.
func WithLocale(currency, language, countryCode string) ClientOption {
	return func(c *Client) {
		if currency != "" {
			c.currency = currency
		}
		if language != "" {
			c.language = language
		}
		if countryCode != "" {
			c.countryCode = countryCode
		}
	}
}

func WithMaxProperties(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxProperties = n
		}
	}
}

func withClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

func NewClient(apiKey, apiSecret string, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		apiKey:        apiKey,
		apiSecret:     apiSecret,
		customerIP:    DefaultCustomerIP,
		currency:      "USD",
		language:      "en-US",
		countryCode:   "US",
		maxProperties: DefaultMaxProperties,
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return ProviderName }

// Signature is the hex SHA-512 of key, secret and unix timestamp concatenated.
func Signature(apiKey, apiSecret string, ts int64) string {
	sum := sha512.Sum512([]byte(apiKey + apiSecret + strconv.FormatInt(ts, 10)))
	return hex.EncodeToString(sum[:])
}

func (c *Client) authorization() string {
	ts := c.now().Unix()
	return fmt.Sprintf("EAN apikey=%s,signature=%s,timestamp=%d", c.apiKey, Signature(c.apiKey, c.apiSecret, ts), ts)
}

// SearchHotels resolves the city to its property ids and returns the ones with
// availability for the stay, each priced at its cheapest nightly rate.
func (c *Client) SearchHotels(ctx context.Context, q types.HotelQuery) ([]types.Hotel, error) {
	ctx, span := otel.Tracer("Expedia").Start(ctx, "SearchHotels", trace.WithAttributes(
		attribute.String("city", q.City),
		attribute.Int("nights", q.Nights()),
	))
	defer span.End()

	ids, err := c.propertyIDs(ctx, q.City)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "region lookup failed")
		return nil, err
	}
	if len(ids) == 0 {
		c.logger.InfoContext(ctx, "No Expedia properties for city", slog.String("city", q.City))
		return nil, nil
	}

	occupancy := strconv.Itoa(max(q.Occupancy, 1))
	params := url.Values{
		"checkin":           {q.CheckIn.Format(types.DateLayout)},
		"checkout":          {q.CheckOut.Format(types.DateLayout)},
		"currency":          {c.currency},
		"language":          {c.language},
		"country_code":      {c.countryCode},
		"occupancy":         {occupancy},
		"property_id":       ids,
		"rate_plan_count":   {"1"},
		"sales_channel":     {"website"},
		"sales_environment": {"hotel_only"},
	}
	var avail []availability
	if err := c.get(ctx, "/properties/availability", params, &avail); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "availability lookup failed")
		return nil, err
	}

	nights := float64(q.Nights())
	hotels := make([]types.Hotel, 0, len(avail))
	for _, a := range avail {
		h := types.Hotel{Place: types.Place{ID: a.PropertyID, Provider: ProviderName, Category: "hotel"}}
		if total, currency, ok := a.lowestTotal(occupancy); ok {
			rate := total / nights
			tier := types.PriceTierFromRate(rate)
			h.NightlyRate = &rate
			h.Currency = currency
			h.PriceTier = &tier
		}
		hotels = append(hotels, h)
	}
	span.SetAttributes(attribute.Int("results", len(hotels)))
	return hotels, nil
}

// HotelDetails fetches the property content (name, address, ratings, location).
func (c *Client) HotelDetails(ctx context.Context, propertyID string) (types.PlaceDetails, error) {
	ctx, span := otel.Tracer("Expedia").Start(ctx, "HotelDetails", trace.WithAttributes(
		attribute.String("property.id", propertyID),
	))
	defer span.End()

	params := url.Values{
		"language":      {c.language},
		"supply_source": {"expedia"},
		"property_id":   {propertyID},
	}
	var content map[string]propertyContent
	if err := c.get(ctx, "/properties/content", params, &content); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "content lookup failed")
		return types.PlaceDetails{}, err
	}
	pc, ok := content[propertyID]
	if !ok {
		err := &types.ProviderError{Provider: ProviderName, StatusCode: http.StatusNotFound, Message: "no content for property " + propertyID}
		span.RecordError(err)
		return types.PlaceDetails{}, err
	}
	return pc.toDetails(), nil
}

func (c *Client) propertyIDs(ctx context.Context, city string) ([]string, error) {
	params := url.Values{
		"language": {c.language},
		"name":     {city},
		"type":     {"city"},
		"include":  {"property_ids"},
	}
	var regions []region
	if err := c.get(ctx, "/regions", params, &regions); err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, nil
	}
	ids := regions[0].PropertyIDs
	if len(ids) > c.maxProperties {
		ids = ids[:c.maxProperties]
	}
	return ids, nil
}

// customerIPFor prefers the end user's address captured by the HTTP middleware.
func (c *Client) customerIPFor(ctx context.Context) string {
	if ip, ok := appMiddleware.CustomerIPFromContext(ctx); ok {
		return ip
	}
	return c.customerIP
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.authorization())
	req.Header.Set("Customer-Ip", c.customerIPFor(ctx))
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "Expedia request", slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &types.ProviderError{Provider: ProviderName, StatusCode: http.StatusServiceUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &types.ProviderError{Provider: ProviderName, StatusCode: http.StatusBadGateway, Message: "malformed response: " + err.Error()}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	msg := string(body)
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Type + ": " + apiErr.Message
	}
	return &types.ProviderError{Provider: ProviderName, StatusCode: resp.StatusCode, Message: msg}
}
