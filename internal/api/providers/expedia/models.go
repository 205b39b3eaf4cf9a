package expedia

import (
	"strconv"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type region struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	PropertyIDs []string `json:"property_ids"`
}

type amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type pricing struct {
	Totals struct {
		Inclusive struct {
			RequestCurrency amount `json:"request_currency"`
		} `json:"inclusive"`
	} `json:"totals"`
}

type availability struct {
	PropertyID string `json:"property_id"`
	Status     string `json:"status"`
	Rooms      []struct {
		ID    string `json:"id"`
		Rates []struct {
			ID               string             `json:"id"`
			OccupancyPricing map[string]pricing `json:"occupancy_pricing"`
		} `json:"rates"`
	} `json:"rooms"`
}

// lowestTotal returns the cheapest inclusive stay total for the occupancy across all rooms.
func (a availability) lowestTotal(occupancy string) (float64, string, bool) {
	var (
		best     float64
		currency string
		found    bool
	)
	for _, room := range a.Rooms {
		for _, rate := range room.Rates {
			p, ok := rate.OccupancyPricing[occupancy]
			if !ok {
				continue
			}
			amt := p.Totals.Inclusive.RequestCurrency
			v, err := strconv.ParseFloat(amt.Value, 64)
			if err != nil {
				continue
			}
			if !found || v < best {
				best, currency, found = v, amt.Currency, true
			}
		}
	}
	return best, currency, found
}

type propertyContent struct {
	PropertyID string `json:"property_id"`
	Name       string `json:"name"`
	Address    struct {
		Line1       string `json:"line_1"`
		City        string `json:"city"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
	Location struct {
		Coordinates struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"coordinates"`
	} `json:"location"`
	Ratings struct {
		Guest struct {
			Count   int    `json:"count"`
			Overall string `json:"overall"`
		} `json:"guest"`
	} `json:"ratings"`
	Category struct {
		Name string `json:"name"`
	} `json:"category"`
}

func (pc propertyContent) toDetails() types.PlaceDetails {
	d := types.PlaceDetails{
		Name:        pc.Name,
		ReviewCount: pc.Ratings.Guest.Count,
		Category:    pc.Category.Name,
	}
	switch {
	case pc.Address.Line1 != "" && pc.Address.City != "":
		d.Address = pc.Address.Line1 + ", " + pc.Address.City
	case pc.Address.Line1 != "":
		d.Address = pc.Address.Line1
	default:
		d.Address = pc.Address.City
	}
	if c := pc.Location.Coordinates; c.Latitude != 0 || c.Longitude != 0 {
		d.Location = &types.GeoPoint{Lat: c.Latitude, Lng: c.Longitude}
	}
	if r, err := strconv.ParseFloat(pc.Ratings.Guest.Overall, 64); err == nil {
		d.Rating = &r
	}
	return d
}
