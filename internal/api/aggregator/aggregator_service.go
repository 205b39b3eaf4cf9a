// Package aggregator collects places and hotels for a trip from the configured
// providers, deduplicates them and enriches them with detail lookups.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// PlaceSearcher is a provider of interest keyed place searches.
type PlaceSearcher interface {
	Name() string
	SearchPlaces(ctx context.Context, query string) ([]types.Place, error)
	PlaceDetails(ctx context.Context, id string) (types.PlaceDetails, error)
}

// HotelSearcher is a provider of hotels for a stay.
type HotelSearcher interface {
	Name() string
	SearchHotels(ctx context.Context, q types.HotelQuery) ([]types.Hotel, error)
	HotelDetails(ctx context.Context, id string) (types.PlaceDetails, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Aggregate never fails on provider errors; a provider outage yields empty sets.
	Aggregate(ctx context.Context, req types.TripRequest) (types.Aggregation, error)
}

type ServiceImpl struct {
	places  PlaceSearcher
	hotels  []HotelSearcher
	cfg     config.AggregatorConfig
	metrics *metrics.AppMetrics
	logger  *slog.Logger
}

// NewServiceImpl wires the place provider (may be nil) and the hotel providers, tried in
// order until one returns results.
func NewServiceImpl(places PlaceSearcher, hotels []HotelSearcher, cfg config.AggregatorConfig, logger *slog.Logger) *ServiceImpl {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &ServiceImpl{
		places:  places,
		hotels:  hotels,
		cfg:     cfg,
		metrics: metrics.Get(),
		logger:  logger,
	}
}

func (s *ServiceImpl) Aggregate(ctx context.Context, req types.TripRequest) (types.Aggregation, error) {
	ctx, span := otel.Tracer("Aggregator").Start(ctx, "Aggregate", trace.WithAttributes(
		attribute.String("destination", req.Destination()),
		attribute.Int("interests", len(req.Interests)),
	))
	defer span.End()

	var (
		agg types.Aggregation
		g   errgroup.Group
	)
	g.Go(func() error {
		agg.Places = s.collectPlaces(ctx, req)
		return nil
	})
	g.Go(func() error {
		agg.Hotels = s.collectHotels(ctx, req)
		return nil
	})
	_ = g.Wait()

	if agg.Places == nil {
		agg.Places = []types.Place{}
	}
	if agg.Hotels == nil {
		agg.Hotels = []types.Hotel{}
	}

	span.SetAttributes(
		attribute.Int("places", len(agg.Places)),
		attribute.Int("hotels", len(agg.Hotels)),
	)
	s.logger.InfoContext(ctx, "Aggregated trip data",
		slog.String("destination", req.Destination()),
		slog.Int("places", len(agg.Places)),
		slog.Int("hotels", len(agg.Hotels)))
	return agg, nil
}

func (s *ServiceImpl) collectPlaces(ctx context.Context, req types.TripRequest) []types.Place {
	if s.places == nil || len(req.Interests) == 0 {
		return nil
	}

	// one slot per interest keeps the combined order independent of completion order
	perInterest := make([][]types.Place, len(req.Interests))
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)
	for i, interest := range req.Interests {
		g.Go(func() error {
			query := interest + " in " + req.Destination()
			found, err := s.places.SearchPlaces(ctx, query)
			if err != nil {
				s.providerFailed(ctx, s.places.Name(), "search places", err, slog.String("interest", interest))
				return nil
			}
			if s.cfg.MaxPlacesPerInterest > 0 && len(found) > s.cfg.MaxPlacesPerInterest {
				found = found[:s.cfg.MaxPlacesPerInterest]
			}
			for j := range found {
				if found[j].Category == "" {
					found[j].Category = interest
				}
			}
			perInterest[i] = found
			return nil
		})
	}
	_ = g.Wait()

	places := Dedupe(lo.Flatten(perInterest), func(p types.Place) string { return p.ID })
	s.enrich(ctx, len(places), func(ctx context.Context, i int) {
		d, err := s.places.PlaceDetails(ctx, places[i].ID)
		d.Apply(&places[i])
		if err != nil {
			s.providerFailed(ctx, s.places.Name(), "place details", err, slog.String("place_id", places[i].ID))
		}
	})
	return places
}

func (s *ServiceImpl) collectHotels(ctx context.Context, req types.TripRequest) []types.Hotel {
	q := types.HotelQuery{
		City:      req.City,
		Country:   req.Country,
		CheckIn:   req.StartDate,
		CheckOut:  req.EndDate,
		Occupancy: req.Persons,
	}
	if !q.CheckOut.After(q.CheckIn) {
		q.CheckOut = q.CheckIn.Add(24 * time.Hour)
	}

	for _, source := range s.hotels {
		found, err := source.SearchHotels(ctx, q)
		if err != nil {
			s.providerFailed(ctx, source.Name(), "search hotels", err)
			continue
		}
		hotels := Dedupe(found, func(h types.Hotel) string { return h.ID })
		if len(hotels) == 0 {
			continue
		}
		if s.cfg.MaxHotels > 0 && len(hotels) > s.cfg.MaxHotels {
			hotels = hotels[:s.cfg.MaxHotels]
		}
		s.enrich(ctx, len(hotels), func(ctx context.Context, i int) {
			d, err := source.HotelDetails(ctx, hotels[i].ID)
			d.Apply(&hotels[i].Place)
			if err != nil {
				s.providerFailed(ctx, source.Name(), "hotel details", err, slog.String("hotel_id", hotels[i].ID))
			}
		})
		return hotels
	}
	return nil
}

// enrich runs fn for every index with bounded concurrency. Each fn writes only its own slot.
func (s *ServiceImpl) enrich(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)
	for i := range n {
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *ServiceImpl) providerFailed(ctx context.Context, provider, op string, err error, attrs ...any) {
	s.metrics.RecordProviderError(ctx, provider)
	args := append([]any{slog.String("provider", provider), slog.String("op", op), slog.Any("error", err)}, attrs...)
	s.logger.WarnContext(ctx, "Provider call failed, continuing with partial data", args...)
}

// Dedupe keeps the first record for every non-empty key, preserving order.
func Dedupe[T any](records []T, key func(T) string) []T {
	withKey := lo.Filter(records, func(r T, _ int) bool { return key(r) != "" })
	return lo.UniqBy(withKey, key)
}
