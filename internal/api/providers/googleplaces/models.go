package googleplaces

import "github.com/FACorreiaa/go-travel-planner/internal/types"

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geometry struct {
	Location location `json:"location"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Vicinity         string   `json:"vicinity"`
	Geometry         geometry `json:"geometry"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level"`
	Types            []string `json:"types"`
	Website          string   `json:"website"`
	OpeningHours     *struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
}

type searchResponse struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
}

func (r *searchResponse) apiStatus() (string, string) { return r.Status, r.ErrorMessage }

type detailsResponse struct {
	Result       placeResult `json:"result"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
}

func (r *detailsResponse) apiStatus() (string, string) { return r.Status, r.ErrorMessage }

type findPlaceResponse struct {
	Candidates []struct {
		PlaceID  string   `json:"place_id"`
		Geometry geometry `json:"geometry"`
	} `json:"candidates"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (r *findPlaceResponse) apiStatus() (string, string) { return r.Status, r.ErrorMessage }

// generic Google types that say nothing about the place
var genericTypes = map[string]bool{
	"point_of_interest": true,
	"establishment":     true,
}

func (r placeResult) address() string {
	if r.FormattedAddress != "" {
		return r.FormattedAddress
	}
	return r.Vicinity
}

func (r placeResult) category() string {
	for _, t := range r.Types {
		if !genericTypes[t] {
			return t
		}
	}
	return ""
}

func (r placeResult) toPlace() types.Place {
	p := types.Place{
		ID:          r.PlaceID,
		Provider:    ProviderName,
		Name:        r.Name,
		Address:     r.address(),
		Location:    types.GeoPoint{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Rating:      r.Rating,
		ReviewCount: r.UserRatingsTotal,
		Category:    r.category(),
		PriceTier:   r.PriceLevel,
		Website:     r.Website,
	}
	if r.OpeningHours != nil {
		p.OpeningHours = r.OpeningHours.WeekdayText
	}
	return p
}

func (r placeResult) toDetails() types.PlaceDetails {
	d := types.PlaceDetails{
		Name:        r.Name,
		Address:     r.address(),
		Rating:      r.Rating,
		ReviewCount: r.UserRatingsTotal,
		Category:    r.category(),
		PriceTier:   r.PriceLevel,
		Website:     r.Website,
	}
	if r.Geometry.Location != (location{}) {
		d.Location = &types.GeoPoint{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}
	}
	if r.OpeningHours != nil {
		d.OpeningHours = r.OpeningHours.WeekdayText
	}
	return d
}
