package itinerary

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type Handler struct {
	logger  *slog.Logger
	service Service
	repo    Repository
}

func NewHandler(service Service, repo Repository, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		repo:    repo,
	}
}

// CreateItinerary handles POST /itineraries.
func (h *Handler) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "CreateItinerary")
	defer span.End()

	l := h.logger.With(slog.String("method", "CreateItinerary"))

	var payload types.TripRequestPayload
	if err := api.DecodeJSONBody(w, r, &payload); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.WriteError(w, r, err)
		return
	}

	req, err := api.ParseTripRequest(payload)
	if err != nil {
		l.WarnContext(ctx, "Invalid trip dates", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid trip dates")
		api.WriteError(w, r, err)
		return
	}
	span.SetAttributes(attribute.String("destination", req.Destination()))

	result, err := h.service.Plan(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to plan itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.WriteError(w, r, err)
		return
	}

	l.InfoContext(ctx, "Itinerary generated",
		slog.String("destination", req.Destination()),
		slog.Int("places", len(result.Places)),
		slog.Int("hotels", len(result.Hotels)),
		slog.Int64("latency_ms", result.Metadata.LatencyMs))
	span.SetStatus(codes.Ok, "Itinerary generated")
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// StorePOISearch handles POST /searches/pois.
func (h *Handler) StorePOISearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "StorePOISearch")
	defer span.End()

	var search types.POISearchRequest
	if err := api.DecodeJSONBody(w, r, &search); err != nil {
		span.SetStatus(codes.Error, "Invalid request body")
		api.WriteError(w, r, err)
		return
	}
	if err := api.ValidateStruct(search); err != nil {
		span.SetStatus(codes.Error, "Invalid search")
		api.WriteError(w, r, err)
		return
	}

	id, err := h.repo.StorePOISearch(ctx, search)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to store POI search", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to store POI search")
		return
	}

	span.SetAttributes(attribute.String("search.id", id.String()))
	api.WriteJSONResponse(w, r, http.StatusCreated, types.SearchStoredResponse{
		Success:  true,
		SearchID: id,
		Message:  "POI search stored successfully",
	})
}

// StoreHotelSearch handles POST /searches/hotels.
func (h *Handler) StoreHotelSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "StoreHotelSearch", trace.WithAttributes(
		attribute.String("http.method", r.Method),
	))
	defer span.End()

	var search types.HotelSearchRequest
	if err := api.DecodeJSONBody(w, r, &search); err != nil {
		span.SetStatus(codes.Error, "Invalid request body")
		api.WriteError(w, r, err)
		return
	}
	if err := api.ValidateStruct(search); err != nil {
		span.SetStatus(codes.Error, "Invalid search")
		api.WriteError(w, r, err)
		return
	}

	id, err := h.repo.StoreHotelSearch(ctx, search)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to store hotel search", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to store hotel search")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, types.SearchStoredResponse{
		Success:  true,
		SearchID: id,
		Message:  "Hotel search stored successfully",
	})
}
