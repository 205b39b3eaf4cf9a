package types

import (
	"time"

	"github.com/google/uuid"
)

// POISearchRequest logs a place search as it was shown to the user.
type POISearchRequest struct {
	Destination  string  `json:"destination" validate:"required"`
	SearchRadius int     `json:"searchRadius" validate:"gte=0"`
	SearchType   string  `json:"searchType" validate:"required"`
	POIs         []Place `json:"pois"`
}

type HotelSearchRequest struct {
	Destination  string  `json:"destination" validate:"required"`
	SearchRadius int     `json:"searchRadius" validate:"gte=0"`
	Hotels       []Hotel `json:"hotels"`
}

type SearchStoredResponse struct {
	Success  bool      `json:"success"`
	SearchID uuid.UUID `json:"searchId"`
	Message  string    `json:"message"`
}

// HotelQuery is the destination/stay a hotel provider is asked about.
type HotelQuery struct {
	City      string
	Country   string
	CheckIn   time.Time
	CheckOut  time.Time
	Occupancy int
}

func (q HotelQuery) Nights() int {
	n := int(q.CheckOut.Sub(q.CheckIn).Hours() / 24)
	return max(n, 1)
}
