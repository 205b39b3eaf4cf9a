package itinerary

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/api/aggregator"
	generativeAI "github.com/FACorreiaa/go-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Stage is the position of one itinerary request in the pipeline.
type Stage string

const (
	StageValidating     Stage = "validating"
	StageAggregating    Stage = "aggregating"
	StagePromptBuilding Stage = "prompt_building"
	StageGenerating     Stage = "generating"
	StagePersisting     Stage = "persisting"
	StageComplete       Stage = "complete"
	StageErrored        Stage = "errored"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Plan returns a *types.ValidationError, *types.InvalidDateRangeError or
	// *types.GenerationError; provider and storage failures are absorbed.
	Plan(ctx context.Context, req types.TripRequest) (*types.ItineraryResult, error)
}

type ServiceImpl struct {
	aggregator aggregator.Service
	generator  generativeAI.Generator
	repo       Repository
	metrics    *metrics.AppMetrics
	logger     *slog.Logger
	observe    func(Stage)
}

type ServiceOption func(*ServiceImpl)

// WithStageObserver is called on every stage transition of every request.
func WithStageObserver(fn func(Stage)) ServiceOption {
	return func(s *ServiceImpl) { s.observe = fn }
}

func NewServiceImpl(agg aggregator.Service, generator generativeAI.Generator, repo Repository, logger *slog.Logger, opts ...ServiceOption) *ServiceImpl {
	s := &ServiceImpl{
		aggregator: agg,
		generator:  generator,
		repo:       repo,
		metrics:    metrics.Get(),
		logger:     logger,
		observe:    func(Stage) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ServiceImpl) Plan(ctx context.Context, req types.TripRequest) (*types.ItineraryResult, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Plan", trace.WithAttributes(
		attribute.String("destination", req.Destination()),
		attribute.Int("persons", req.Persons),
	))
	defer span.End()

	fail := func(err error, msg string) (*types.ItineraryResult, error) {
		s.enter(ctx, StageErrored)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		return nil, err
	}

	s.enter(ctx, StageValidating)
	if err := api.ValidateStruct(req); err != nil {
		return fail(err, "invalid trip request")
	}
	days, err := TripDays(req.StartDate, req.EndDate)
	if err != nil {
		return fail(err, "invalid date range")
	}

	s.enter(ctx, StageAggregating)
	agg, err := s.aggregator.Aggregate(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "Aggregation failed, continuing without provider data", slog.Any("error", err))
		agg = types.Aggregation{}
	}
	if agg.Places == nil {
		agg.Places = []types.Place{}
	}
	agg.Hotels = withinBudget(agg.Hotels, req.Budget/float64(days))

	s.enter(ctx, StagePromptBuilding)
	prompt, err := BuildPrompt(req, agg)
	if err != nil {
		return fail(err, "prompt building failed")
	}

	s.enter(ctx, StageGenerating)
	model := s.generator.Model()
	start := time.Now()
	text, genErr := s.generator.Generate(ctx, prompt)
	latency := time.Since(start)

	status := types.GenerationSuccess
	if genErr != nil {
		status = types.GenerationFailed
	}
	s.metrics.RecordGeneration(ctx, model, string(status), latency)

	// Stored writes outlive a cancelled request.
	storeCtx := context.WithoutCancel(ctx)
	s.storeChatTurn(storeCtx, types.ChatRecord{
		UserPrompt:       prompt,
		AIResponse:       lo.Ternary(genErr != nil, errorText(genErr), text),
		ModelName:        model,
		Status:           status,
		ProcessingTimeMs: latency.Milliseconds(),
	})

	if genErr != nil {
		s.logger.ErrorContext(ctx, "Itinerary generation failed",
			slog.String("model", model),
			slog.Duration("latency", latency),
			slog.Any("error", genErr))
		return fail(&types.GenerationError{Model: model, Err: genErr}, "generation failed")
	}

	s.enter(ctx, StagePersisting)
	planID := s.persist(storeCtx, req, agg, text)

	result := &types.ItineraryResult{
		Places:    agg.Places,
		Hotels:    agg.Hotels,
		Itinerary: text,
		Metadata: types.ItineraryMetadata{
			PlanID:    planID,
			Model:     model,
			LatencyMs: latency.Milliseconds(),
			Status:    status,
			TripDays:  days,
		},
	}
	s.enter(ctx, StageComplete)
	span.SetStatus(codes.Ok, "Itinerary generated")
	return result, nil
}

func (s *ServiceImpl) enter(ctx context.Context, stage Stage) {
	s.observe(stage)
	trace.SpanFromContext(ctx).AddEvent("stage", trace.WithAttributes(attribute.String("stage", string(stage))))
	if stage == StageComplete || stage == StageErrored {
		s.metrics.RecordRequest(ctx, string(stage))
	}
}

// persist writes the plan and the searches behind it. Failures are logged and counted only.
func (s *ServiceImpl) persist(ctx context.Context, req types.TripRequest, agg types.Aggregation, itinerary string) *uuid.UUID {
	var planID *uuid.UUID
	if id, err := s.repo.StoreTripPlan(ctx, req, agg.Places, itinerary); err != nil {
		s.persistFailed(ctx, "store_trip_plan", err)
	} else {
		planID = &id
	}

	if len(agg.Places) > 0 {
		search := types.POISearchRequest{Destination: req.Destination(), SearchType: "interests", POIs: agg.Places}
		if _, err := s.repo.StorePOISearch(ctx, search); err != nil {
			s.persistFailed(ctx, "store_poi_search", err)
		}
	}
	if len(agg.Hotels) > 0 {
		search := types.HotelSearchRequest{Destination: req.Destination(), Hotels: agg.Hotels}
		if _, err := s.repo.StoreHotelSearch(ctx, search); err != nil {
			s.persistFailed(ctx, "store_hotel_search", err)
		}
	}
	return planID
}

func (s *ServiceImpl) storeChatTurn(ctx context.Context, rec types.ChatRecord) {
	if err := s.repo.StoreChatTurn(ctx, rec); err != nil {
		s.persistFailed(ctx, "store_chat_turn", err)
	}
}

func (s *ServiceImpl) persistFailed(ctx context.Context, op string, err error) {
	s.metrics.RecordPersistenceError(ctx, op)
	s.logger.ErrorContext(ctx, "Persistence failed", slog.String("op", op), slog.Any("error", err))
}

// withinBudget drops hotels whose nightly rate exceeds the per night budget.
// Hotels without a known rate are kept.
func withinBudget(hotels []types.Hotel, perNight float64) []types.Hotel {
	return lo.Filter(hotels, func(h types.Hotel, _ int) bool {
		return h.NightlyRate == nil || *h.NightlyRate <= perNight
	})
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
