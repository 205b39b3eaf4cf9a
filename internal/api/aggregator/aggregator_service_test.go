package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type MockPlaceSearcher struct {
	mock.Mock
}

func (m *MockPlaceSearcher) Name() string { return "mock_places" }

func (m *MockPlaceSearcher) SearchPlaces(ctx context.Context, query string) ([]types.Place, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

func (m *MockPlaceSearcher) PlaceDetails(ctx context.Context, id string) (types.PlaceDetails, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.PlaceDetails), args.Error(1)
}

type MockHotelSearcher struct {
	mock.Mock
	name string
}

func (m *MockHotelSearcher) Name() string { return m.name }

func (m *MockHotelSearcher) SearchHotels(ctx context.Context, q types.HotelQuery) ([]types.Hotel, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Hotel), args.Error(1)
}

func (m *MockHotelSearcher) HotelDetails(ctx context.Context, id string) (types.PlaceDetails, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.PlaceDetails), args.Error(1)
}

var outage = &types.ProviderError{Provider: "mock", StatusCode: http.StatusServiceUnavailable, Message: "down"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parisTrip(interests ...string) types.TripRequest {
	return types.TripRequest{
		Country:   "France",
		City:      "Paris",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		Budget:    1000,
		Persons:   2,
		Interests: interests,
	}
}

func ids[T any](records []T, id func(T) string) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, id(r))
	}
	return out
}

func placeID(p types.Place) string { return p.ID }
func hotelID(h types.Hotel) string { return h.ID }

func TestDedupe(t *testing.T) {
	in := []types.Place{{ID: "a", Name: "first"}, {ID: "b"}, {ID: "a", Name: "second"}, {ID: ""}, {ID: "c"}, {ID: "b"}}
	out := Dedupe(in, placeID)
	assert.Equal(t, []string{"a", "b", "c"}, ids(out, placeID))
	assert.Equal(t, "first", out[0].Name)
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("dedupes across interests keeping first seen order", func(t *testing.T) {
		places := new(MockPlaceSearcher)
		places.On("SearchPlaces", mock.Anything, "museums in Paris, France").
			Return([]types.Place{{ID: "louvre", Name: "Louvre"}, {ID: "orsay", Name: "Orsay", Category: "museum"}}, nil)
		places.On("SearchPlaces", mock.Anything, "art in Paris, France").
			Return([]types.Place{{ID: "orsay", Name: "Orsay again"}, {ID: "pompidou", Name: "Pompidou"}}, nil)
		places.On("PlaceDetails", mock.Anything, mock.Anything).Return(types.PlaceDetails{}, nil)

		svc := NewServiceImpl(places, nil, config.AggregatorConfig{Concurrency: 2}, discardLogger())
		agg, err := svc.Aggregate(ctx, parisTrip("museums", "art"))
		require.NoError(t, err)

		assert.Equal(t, []string{"louvre", "orsay", "pompidou"}, ids(agg.Places, placeID))
		assert.Equal(t, "Orsay", agg.Places[1].Name)
		assert.Equal(t, "museums", agg.Places[0].Category, "empty category falls back to the interest")
		assert.Equal(t, "art", agg.Places[2].Category)
		assert.Empty(t, agg.Hotels)
		places.AssertNumberOfCalls(t, "PlaceDetails", 3)
	})

	t.Run("output is deterministic", func(t *testing.T) {
		places := new(MockPlaceSearcher)
		for _, interest := range []string{"a", "b", "c", "d"} {
			places.On("SearchPlaces", mock.Anything, interest+" in Paris, France").
				Return([]types.Place{{ID: interest}, {ID: "shared"}}, nil)
		}
		places.On("PlaceDetails", mock.Anything, mock.Anything).Return(types.PlaceDetails{}, nil)

		svc := NewServiceImpl(places, nil, config.AggregatorConfig{Concurrency: 4}, discardLogger())
		for range 5 {
			agg, err := svc.Aggregate(ctx, parisTrip("a", "b", "c", "d"))
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "shared", "b", "c", "d"}, ids(agg.Places, placeID))
		}
	})

	t.Run("detail failure keeps the record with partial details", func(t *testing.T) {
		tier := 2
		places := new(MockPlaceSearcher)
		places.On("SearchPlaces", mock.Anything, mock.Anything).
			Return([]types.Place{{ID: "p1", Name: "Louvre"}, {ID: "p2", Name: "Orsay"}}, nil)
		places.On("PlaceDetails", mock.Anything, "p1").
			Return(types.PlaceDetails{OpeningHours: []string{"Monday: Closed"}}, errors.New("timeout"))
		places.On("PlaceDetails", mock.Anything, "p2").
			Return(types.PlaceDetails{PriceTier: &tier, Website: "https://orsay.fr"}, nil)

		svc := NewServiceImpl(places, nil, config.AggregatorConfig{}, discardLogger())
		agg, err := svc.Aggregate(ctx, parisTrip("museums"))
		require.NoError(t, err)

		require.Len(t, agg.Places, 2)
		assert.Equal(t, "Louvre", agg.Places[0].Name)
		assert.Equal(t, []string{"Monday: Closed"}, agg.Places[0].OpeningHours)
		assert.Equal(t, "https://orsay.fr", agg.Places[1].Website)
		require.NotNil(t, agg.Places[1].PriceTier)
	})

	t.Run("caps results per interest", func(t *testing.T) {
		places := new(MockPlaceSearcher)
		places.On("SearchPlaces", mock.Anything, mock.Anything).
			Return([]types.Place{{ID: "1"}, {ID: "2"}, {ID: "3"}}, nil)
		places.On("PlaceDetails", mock.Anything, mock.Anything).Return(types.PlaceDetails{}, nil)

		svc := NewServiceImpl(places, nil, config.AggregatorConfig{MaxPlacesPerInterest: 2}, discardLogger())
		agg, err := svc.Aggregate(ctx, parisTrip("museums"))
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, ids(agg.Places, placeID))
	})

	t.Run("total provider outage yields empty sets", func(t *testing.T) {
		places := new(MockPlaceSearcher)
		places.On("SearchPlaces", mock.Anything, mock.Anything).Return(nil, outage)
		hotels := &MockHotelSearcher{name: "mock_hotels"}
		hotels.On("SearchHotels", mock.Anything, mock.Anything).Return(nil, outage)

		svc := NewServiceImpl(places, []HotelSearcher{hotels}, config.AggregatorConfig{}, discardLogger())
		agg, err := svc.Aggregate(ctx, parisTrip("museums", "food"))
		require.NoError(t, err)
		assert.NotNil(t, agg.Places)
		assert.NotNil(t, agg.Hotels)
		assert.Empty(t, agg.Places)
		assert.Empty(t, agg.Hotels)
		places.AssertNotCalled(t, "PlaceDetails", mock.Anything, mock.Anything)
	})

	t.Run("hotel sources are tried in order", func(t *testing.T) {
		primary := &MockHotelSearcher{name: "expedia"}
		primary.On("SearchHotels", mock.Anything, mock.Anything).Return(nil, outage)
		fallback := &MockHotelSearcher{name: "google_places"}
		fallback.On("SearchHotels", mock.Anything, mock.MatchedBy(func(q types.HotelQuery) bool {
			return q.City == "Paris" && q.Occupancy == 2 && q.Nights() == 3
		})).Return([]types.Hotel{
			{Place: types.Place{ID: "h1"}},
			{Place: types.Place{ID: "h1"}},
			{Place: types.Place{ID: "h2"}},
			{Place: types.Place{ID: "h3"}},
		}, nil)
		fallback.On("HotelDetails", mock.Anything, "h1").Return(types.PlaceDetails{Name: "Hotel A"}, nil)
		fallback.On("HotelDetails", mock.Anything, "h2").Return(types.PlaceDetails{Name: "Hotel B"}, nil)

		svc := NewServiceImpl(nil, []HotelSearcher{primary, fallback}, config.AggregatorConfig{MaxHotels: 2}, discardLogger())
		agg, err := svc.Aggregate(ctx, parisTrip("museums"))
		require.NoError(t, err)

		assert.Equal(t, []string{"h1", "h2"}, ids(agg.Hotels, hotelID))
		assert.Equal(t, "Hotel A", agg.Hotels[0].Name)
		primary.AssertNotCalled(t, "HotelDetails", mock.Anything, mock.Anything)
		fallback.AssertNotCalled(t, "HotelDetails", mock.Anything, "h3")
	})

	t.Run("same day trip still asks for one night", func(t *testing.T) {
		hotels := &MockHotelSearcher{name: "mock_hotels"}
		hotels.On("SearchHotels", mock.Anything, mock.MatchedBy(func(q types.HotelQuery) bool {
			return q.CheckOut.Sub(q.CheckIn) == 24*time.Hour
		})).Return([]types.Hotel{}, nil)

		req := parisTrip("museums")
		req.EndDate = req.StartDate
		svc := NewServiceImpl(nil, []HotelSearcher{hotels}, config.AggregatorConfig{}, discardLogger())
		_, err := svc.Aggregate(ctx, req)
		require.NoError(t, err)
		hotels.AssertExpectations(t)
	})
}
