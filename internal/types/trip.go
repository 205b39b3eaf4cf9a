package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// TripRequestPayload is the wizard form as it arrives over HTTP.
type TripRequestPayload struct {
	Country   string   `json:"country"`
	City      string   `json:"city"`
	StartDate string   `json:"startDate"` // YYYY-MM-DD
	EndDate   string   `json:"endDate"`   // YYYY-MM-DD
	Budget    float64  `json:"budget"`
	Persons   int      `json:"persons"`
	Interests []string `json:"interests"`
}

// TripRequest is a validated trip to plan. Treat it as immutable once submitted.
type TripRequest struct {
	Country   string    `json:"country" validate:"required"`
	City      string    `json:"city" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	Budget    float64   `json:"budget" validate:"gt=0"`
	Persons   int       `json:"persons" validate:"gte=1"`
	Interests []string  `json:"interests" validate:"min=1,dive,required"`
}

// Destination renders "City, Country" for provider queries and prompts.
func (t TripRequest) Destination() string {
	return strings.TrimSpace(t.City) + ", " + strings.TrimSpace(t.Country)
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a normalized point of interest. ID is unique within one result set.
type Place struct {
	ID           string   `json:"id"`
	Provider     string   `json:"provider"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Location     GeoPoint `json:"location"`
	Rating       *float64 `json:"rating,omitempty"` // 0-5
	ReviewCount  int      `json:"review_count"`
	Category     string   `json:"category"`
	OpeningHours []string `json:"opening_hours,omitempty"` // weekday text, Monday first
	PriceTier    *int     `json:"price_tier,omitempty"`    // 0-4
	Website      string   `json:"website,omitempty"`
}

// OpeningHoursOn returns the opening hours line for the given weekday, or "".
func (p Place) OpeningHoursOn(day time.Weekday) string {
	if len(p.OpeningHours) != 7 {
		return ""
	}
	// Providers list Monday first; time.Weekday starts on Sunday.
	return p.OpeningHours[(int(day)+6)%7]
}

// Hotel is a Place with lodging specific pricing.
type Hotel struct {
	Place
	NightlyRate *float64 `json:"nightly_rate,omitempty"`
	Currency    string   `json:"currency,omitempty"`
}

// PriceTierLabel renders the tier as "$".."$$$$", or "N/A" when unknown.
func (h Hotel) PriceTierLabel() string {
	return PriceTierLabel(h.PriceTier)
}

func PriceTierLabel(tier *int) string {
	if tier == nil || *tier <= 0 {
		return "N/A"
	}
	return strings.Repeat("$", min(*tier, 4))
}

// PriceTierFromRate buckets a nightly rate into the 0-4 price tier scale.
func PriceTierFromRate(rate float64) int {
	switch {
	case rate <= 0:
		return 0
	case rate < 75:
		return 1
	case rate < 150:
		return 2
	case rate < 300:
		return 3
	default:
		return 4
	}
}

// PlaceDetails is what a detail lookup contributes to a Place. Zero fields are left untouched.
type PlaceDetails struct {
	Name         string
	Address      string
	Location     *GeoPoint
	Rating       *float64
	ReviewCount  int
	Category     string
	OpeningHours []string
	PriceTier    *int
	Website      string
}

// Apply merges the non-zero detail fields into p.
func (d PlaceDetails) Apply(p *Place) {
	if d.Name != "" {
		p.Name = d.Name
	}
	if d.Address != "" {
		p.Address = d.Address
	}
	if d.Location != nil {
		p.Location = *d.Location
	}
	if d.Rating != nil {
		p.Rating = d.Rating
	}
	if d.ReviewCount > 0 {
		p.ReviewCount = d.ReviewCount
	}
	if d.Category != "" {
		p.Category = d.Category
	}
	if len(d.OpeningHours) > 0 {
		p.OpeningHours = d.OpeningHours
	}
	if d.PriceTier != nil {
		p.PriceTier = d.PriceTier
	}
	if d.Website != "" {
		p.Website = d.Website
	}
}

type Aggregation struct {
	Places []Place `json:"places"`
	Hotels []Hotel `json:"hotels"`
}

type GenerationStatus string

const (
	GenerationSuccess GenerationStatus = "success"
	GenerationFailed  GenerationStatus = "error"
)

type ItineraryMetadata struct {
	PlanID    *uuid.UUID       `json:"plan_id,omitempty"`
	Model     string           `json:"model"`
	LatencyMs int64            `json:"latency_ms"`
	Status    GenerationStatus `json:"status"`
	TripDays  int              `json:"trip_days"`
}

// ItineraryResult is handed to the caller once and never mutated afterwards.
type ItineraryResult struct {
	Places    []Place           `json:"places"`
	Hotels    []Hotel           `json:"hotels"`
	Itinerary string            `json:"itinerary"`
	Metadata  ItineraryMetadata `json:"metadata"`
}
