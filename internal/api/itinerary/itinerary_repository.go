package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the persistence gateway for plans, searches and chat turns. Every write
// except StoreChatTurn runs in a single transaction and rolls back entirely on failure.
type Repository interface {
	StoreTripPlan(ctx context.Context, req types.TripRequest, places []types.Place, itinerary string) (uuid.UUID, error)
	StoreHotelSearch(ctx context.Context, search types.HotelSearchRequest) (uuid.UUID, error)
	StorePOISearch(ctx context.Context, search types.POISearchRequest) (uuid.UUID, error)
	StoreChatTurn(ctx context.Context, rec types.ChatRecord) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewRepository(pgpool database.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) StoreTripPlan(ctx context.Context, req types.TripRequest, places []types.Place, itinerary string) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "StoreTripPlan", trace.WithAttributes(
		attribute.String("destination", req.Destination()),
		attribute.Int("places", len(places)),
	))
	defer span.End()

	id, err := r.storeTripPlan(ctx, req, places, itinerary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store trip plan failed")
		return uuid.Nil, &types.PersistenceError{Op: "store_trip_plan", Err: err}
	}
	return id, nil
}

func (r *RepositoryImpl) storeTripPlan(ctx context.Context, req types.TripRequest, places []types.Place, itinerary string) (uuid.UUID, error) {
	tx, err := r.pgpool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var planID uuid.UUID
	if err := tx.QueryRow(ctx, `
		INSERT INTO trip_plans (city, country, start_date, end_date, budget, persons)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		req.City, req.Country, req.StartDate, req.EndDate, req.Budget, req.Persons,
	).Scan(&planID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert trip plan: %w", err)
	}

	for _, interest := range req.Interests {
		if _, err := tx.Exec(ctx,
			`INSERT INTO trip_interests (trip_plan_id, interest) VALUES ($1, $2)`,
			planID, interest,
		); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert trip interest: %w", err)
		}
	}

	for _, p := range places {
		if _, err := tx.Exec(ctx, `
			INSERT INTO trip_places (trip_plan_id, place_id, name, address, rating, user_ratings_total, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			planID, p.ID, p.Name, p.Address, p.Rating, p.ReviewCount, p.Location.Lat, p.Location.Lng,
		); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert trip place %s: %w", p.ID, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO trip_itineraries (trip_plan_id, itinerary_text) VALUES ($1, $2)`,
		planID, itinerary,
	); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert itinerary: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	r.logger.InfoContext(ctx, "Stored trip plan", slog.String("plan_id", planID.String()))
	return planID, nil
}

func (r *RepositoryImpl) StoreHotelSearch(ctx context.Context, search types.HotelSearchRequest) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "StoreHotelSearch", trace.WithAttributes(
		attribute.String("destination", search.Destination),
		attribute.Int("hotels", len(search.Hotels)),
	))
	defer span.End()

	id, err := r.storeHotelSearch(ctx, search)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store hotel search failed")
		return uuid.Nil, &types.PersistenceError{Op: "store_hotel_search", Err: err}
	}
	return id, nil
}

func (r *RepositoryImpl) storeHotelSearch(ctx context.Context, search types.HotelSearchRequest) (uuid.UUID, error) {
	tx, err := r.pgpool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var searchID uuid.UUID
	if err := tx.QueryRow(ctx,
		`INSERT INTO hotel_searches (destination, search_radius) VALUES ($1, $2) RETURNING id`,
		search.Destination, search.SearchRadius,
	).Scan(&searchID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert hotel search: %w", err)
	}

	for _, h := range search.Hotels {
		if _, err := tx.Exec(ctx, `
			INSERT INTO hotels (search_id, place_id, name, address, rating, price_level, website)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			searchID, h.ID, h.Name, h.Address, h.Rating, h.PriceTier, h.Website,
		); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert hotel %s: %w", h.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return searchID, nil
}

func (r *RepositoryImpl) StorePOISearch(ctx context.Context, search types.POISearchRequest) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "StorePOISearch", trace.WithAttributes(
		attribute.String("destination", search.Destination),
		attribute.String("search_type", search.SearchType),
		attribute.Int("pois", len(search.POIs)),
	))
	defer span.End()

	id, err := r.storePOISearch(ctx, search)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store poi search failed")
		return uuid.Nil, &types.PersistenceError{Op: "store_poi_search", Err: err}
	}
	return id, nil
}

func (r *RepositoryImpl) storePOISearch(ctx context.Context, search types.POISearchRequest) (uuid.UUID, error) {
	tx, err := r.pgpool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var searchID uuid.UUID
	if err := tx.QueryRow(ctx,
		`INSERT INTO poi_searches (destination, search_radius, search_type) VALUES ($1, $2, $3) RETURNING id`,
		search.Destination, search.SearchRadius, search.SearchType,
	).Scan(&searchID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert poi search: %w", err)
	}

	for _, p := range search.POIs {
		var hours []byte
		if len(p.OpeningHours) > 0 {
			if hours, err = json.Marshal(p.OpeningHours); err != nil {
				return uuid.Nil, fmt.Errorf("failed to encode opening hours: %w", err)
			}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO points_of_interest
				(search_id, place_id, name, address, type, rating, user_ratings_total, price_level, website, opening_hours)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			searchID, p.ID, p.Name, p.Address, p.Category, p.Rating, p.ReviewCount, p.PriceTier, p.Website, hours,
		); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert point of interest %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return searchID, nil
}

// StoreChatTurn records one prompt/response pair, successful or not.
func (r *RepositoryImpl) StoreChatTurn(ctx context.Context, rec types.ChatRecord) error {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "StoreChatTurn", trace.WithAttributes(
		attribute.String("model", rec.ModelName),
		attribute.String("status", string(rec.Status)),
	))
	defer span.End()

	if _, err := r.pgpool.Exec(ctx, `
		INSERT INTO chat_conversations (user_prompt, ai_response, model_name, response_status, processing_time)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.UserPrompt, rec.AIResponse, rec.ModelName, string(rec.Status), rec.ProcessingTimeMs,
	); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store chat turn failed")
		return &types.PersistenceError{Op: "store_chat_turn", Err: fmt.Errorf("failed to insert chat conversation: %w", err)}
	}
	return nil
}
