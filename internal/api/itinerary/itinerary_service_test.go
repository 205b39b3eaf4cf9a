package itinerary

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) Aggregate(ctx context.Context, req types.TripRequest) (types.Aggregation, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.Aggregation), args.Error(1)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) Model() string { return "test-model" }

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) StoreTripPlan(ctx context.Context, req types.TripRequest, places []types.Place, itinerary string) (uuid.UUID, error) {
	args := m.Called(ctx, req, places, itinerary)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) StoreHotelSearch(ctx context.Context, search types.HotelSearchRequest) (uuid.UUID, error) {
	args := m.Called(ctx, search)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) StorePOISearch(ctx context.Context, search types.POISearchRequest) (uuid.UUID, error) {
	args := m.Called(ctx, search)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) StoreChatTurn(ctx context.Context, rec types.ChatRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

type fixture struct {
	agg    *MockAggregator
	gen    *MockGenerator
	repo   *MockRepository
	stages []Stage
	svc    *ServiceImpl
}

func newFixture() *fixture {
	f := &fixture{agg: new(MockAggregator), gen: new(MockGenerator), repo: new(MockRepository)}
	f.svc = NewServiceImpl(f.agg, f.gen, f.repo, discardLogger(),
		WithStageObserver(func(s Stage) { f.stages = append(f.stages, s) }))
	return f
}

func TestPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("empty aggregation still yields an itinerary", func(t *testing.T) {
		f := newFixture()
		planID := uuid.New()
		f.agg.On("Aggregate", mock.Anything, parisRequest()).Return(types.Aggregation{}, nil)
		f.gen.On("Generate", mock.Anything, mock.Anything).Return("Day 1: walk along the Seine", nil)
		f.repo.On("StoreChatTurn", mock.Anything, mock.MatchedBy(func(r types.ChatRecord) bool {
			return r.Status == types.GenerationSuccess && r.ModelName == "test-model"
		})).Return(nil)
		f.repo.On("StoreTripPlan", mock.Anything, parisRequest(), mock.Anything, "Day 1: walk along the Seine").Return(planID, nil)

		res, err := f.svc.Plan(ctx, parisRequest())
		require.NoError(t, err)
		assert.Equal(t, "Day 1: walk along the Seine", res.Itinerary)
		assert.Empty(t, res.Places)
		assert.Empty(t, res.Hotels)
		assert.Equal(t, 3, res.Metadata.TripDays)
		assert.Equal(t, types.GenerationSuccess, res.Metadata.Status)
		require.NotNil(t, res.Metadata.PlanID)
		assert.Equal(t, planID, *res.Metadata.PlanID)
		assert.Equal(t, []Stage{StageValidating, StageAggregating, StagePromptBuilding, StageGenerating, StagePersisting, StageComplete}, f.stages)
		f.repo.AssertNotCalled(t, "StorePOISearch", mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "StoreHotelSearch", mock.Anything, mock.Anything)
	})

	t.Run("aggregator error degrades to empty sets", func(t *testing.T) {
		f := newFixture()
		f.agg.On("Aggregate", mock.Anything, mock.Anything).Return(types.Aggregation{}, errors.New("boom"))
		f.gen.On("Generate", mock.Anything, mock.Anything).Return("Day 1", nil)
		f.repo.On("StoreChatTurn", mock.Anything, mock.Anything).Return(nil)
		f.repo.On("StoreTripPlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(uuid.New(), nil)

		res, err := f.svc.Plan(ctx, parisRequest())
		require.NoError(t, err)
		assert.NotNil(t, res.Places)
		assert.NotNil(t, res.Hotels)
	})

	t.Run("generation failure is logged then surfaced", func(t *testing.T) {
		f := newFixture()
		f.agg.On("Aggregate", mock.Anything, mock.Anything).Return(types.Aggregation{}, nil)
		f.gen.On("Generate", mock.Anything, mock.Anything).
			Return("", &types.ProviderError{Provider: "together", StatusCode: http.StatusInternalServerError, Message: "oops"})
		f.repo.On("StoreChatTurn", mock.Anything, mock.MatchedBy(func(r types.ChatRecord) bool {
			return r.Status == types.GenerationFailed && r.AIResponse != ""
		})).Return(nil)

		res, err := f.svc.Plan(ctx, parisRequest())
		assert.Nil(t, res)

		var genErr *types.GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, "test-model", genErr.Model)
		var perr *types.ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, http.StatusInternalServerError, perr.StatusCode)

		assert.Equal(t, StageErrored, f.stages[len(f.stages)-1])
		assert.NotContains(t, f.stages, StagePersisting)
		f.repo.AssertCalled(t, "StoreChatTurn", mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "StoreTripPlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("persistence failure does not affect the result", func(t *testing.T) {
		f := newFixture()
		agg := types.Aggregation{
			Places: []types.Place{{ID: "p1", Name: "Louvre"}},
			Hotels: []types.Hotel{{Place: types.Place{ID: "h1", Name: "Hotel A"}}},
		}
		dbErr := &types.PersistenceError{Op: "store_trip_plan", Err: errors.New("db down")}
		f.agg.On("Aggregate", mock.Anything, mock.Anything).Return(agg, nil)
		f.gen.On("Generate", mock.Anything, mock.Anything).Return("Day 1: Louvre", nil)
		f.repo.On("StoreChatTurn", mock.Anything, mock.Anything).Return(errors.New("db down"))
		f.repo.On("StoreTripPlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(uuid.Nil, dbErr)
		f.repo.On("StorePOISearch", mock.Anything, mock.Anything).Return(uuid.Nil, dbErr)
		f.repo.On("StoreHotelSearch", mock.Anything, mock.Anything).Return(uuid.Nil, dbErr)

		res, err := f.svc.Plan(ctx, parisRequest())
		require.NoError(t, err)
		assert.Equal(t, "Day 1: Louvre", res.Itinerary)
		assert.Equal(t, agg.Places, res.Places)
		assert.Equal(t, agg.Hotels, res.Hotels)
		assert.Nil(t, res.Metadata.PlanID)
		assert.Equal(t, StageComplete, f.stages[len(f.stages)-1])
		f.repo.AssertExpectations(t)
	})

	t.Run("prompt carries aggregated places and hotels", func(t *testing.T) {
		f := newFixture()
		agg := types.Aggregation{
			Places: []types.Place{{ID: "p1", Name: "Louvre"}},
			Hotels: []types.Hotel{{Place: types.Place{ID: "h1", Name: "Hotel A"}}},
		}
		f.agg.On("Aggregate", mock.Anything, mock.Anything).Return(agg, nil)
		var prompt string
		f.gen.On("Generate", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { prompt = args.String(1) }).
			Return("Day 1", nil)
		f.repo.On("StoreChatTurn", mock.Anything, mock.Anything).Return(nil)
		f.repo.On("StoreTripPlan", mock.Anything, mock.Anything, agg.Places, "Day 1").Return(uuid.New(), nil)
		f.repo.On("StorePOISearch", mock.Anything, mock.MatchedBy(func(s types.POISearchRequest) bool {
			return s.Destination == "Paris, France" && len(s.POIs) == 1
		})).Return(uuid.New(), nil)
		f.repo.On("StoreHotelSearch", mock.Anything, mock.Anything).Return(uuid.New(), nil)

		_, err := f.svc.Plan(ctx, parisRequest())
		require.NoError(t, err)
		assert.Contains(t, prompt, "Louvre")
		assert.Contains(t, prompt, "Hotel A")
		assert.Contains(t, prompt, "3-day itinerary")
		f.repo.AssertExpectations(t)
	})

	t.Run("hotels over the nightly budget are dropped", func(t *testing.T) {
		f := newFixture()
		// 1000 over 3 days is 333.33 per night
		agg := types.Aggregation{Hotels: []types.Hotel{
			{Place: types.Place{ID: "cheap", Name: "Cheap"}, NightlyRate: ptr(120.0)},
			{Place: types.Place{ID: "lux", Name: "Palace"}, NightlyRate: ptr(900.0)},
			{Place: types.Place{ID: "unknown", Name: "Unknown"}},
		}}
		f.agg.On("Aggregate", mock.Anything, mock.Anything).Return(agg, nil)
		f.gen.On("Generate", mock.Anything, mock.Anything).Return("Day 1", nil)
		f.repo.On("StoreChatTurn", mock.Anything, mock.Anything).Return(nil)
		f.repo.On("StoreTripPlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(uuid.New(), nil)
		f.repo.On("StoreHotelSearch", mock.Anything, mock.Anything).Return(uuid.New(), nil)

		res, err := f.svc.Plan(ctx, parisRequest())
		require.NoError(t, err)
		require.Len(t, res.Hotels, 2)
		assert.Equal(t, "cheap", res.Hotels[0].ID)
		assert.Equal(t, "unknown", res.Hotels[1].ID)
	})

	t.Run("invalid request never reaches providers", func(t *testing.T) {
		f := newFixture()
		req := parisRequest()
		req.Interests = nil
		req.Budget = 0

		_, err := f.svc.Plan(ctx, req)
		var verr *types.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Fields, 2)
		assert.Equal(t, []Stage{StageValidating, StageErrored}, f.stages)
		f.agg.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
		f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		f := newFixture()
		req := parisRequest()
		req.StartDate, req.EndDate = date("2024-06-10"), date("2024-06-05")

		_, err := f.svc.Plan(ctx, req)
		require.Error(t, err)
		assert.Equal(t, StageErrored, f.stages[len(f.stages)-1])
		f.agg.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
	})
}
