package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/FACorreiaa/go-travel-planner/internal/api/aggregator"
	"github.com/FACorreiaa/go-travel-planner/internal/api/itinerary"
	llmChat "github.com/FACorreiaa/go-travel-planner/internal/api/llm_chat"
	api "github.com/FACorreiaa/go-travel-planner/internal/router"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// echoGenerator answers instantly so benchmarks measure the pipeline, not the model.
type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, prompt string) (string, error) {
	return "Day 1: " + prompt[:min(len(prompt), 32)], nil
}

func (echoGenerator) Model() string { return "echo" }

// fixedAggregator returns the same aggregation for every request.
type fixedAggregator struct {
	agg types.Aggregation
}

func (f fixedAggregator) Aggregate(context.Context, types.TripRequest) (types.Aggregation, error) {
	return f.agg, nil
}

func benchAggregation(n int) types.Aggregation {
	agg := types.Aggregation{}
	for i := range n {
		rating := 4.0 + float64(i%10)/10
		tier := i % 5
		rate := float64(50 + i*10)
		agg.Places = append(agg.Places, types.Place{
			ID:       fmt.Sprintf("p%d", i),
			Name:     fmt.Sprintf("Place %d", i),
			Category: "museum",
			Rating:   &rating,
			OpeningHours: []string{
				"Monday: Closed", "Tuesday: 9-18", "Wednesday: 9-18", "Thursday: 9-18",
				"Friday: 9-21", "Saturday: 9-18", "Sunday: 9-18",
			},
			PriceTier: &tier,
		})
		agg.Hotels = append(agg.Hotels, types.Hotel{
			Place:       types.Place{ID: fmt.Sprintf("h%d", i), Name: fmt.Sprintf("Hotel %d", i)},
			NightlyRate: &rate,
			Currency:    "USD",
		})
	}
	return agg
}

func benchTrip() types.TripRequest {
	return types.TripRequest{
		Country:   "France",
		City:      "Paris",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		Budget:    3000,
		Persons:   2,
		Interests: []string{"museums", "food", "parks"},
	}
}

func setupBenchmarkRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
	repo := &memoryRepo{}
	agg := fixedAggregator{agg: benchAggregation(10)}

	itineraryService := itinerary.NewServiceImpl(agg, echoGenerator{}, repo, logger)
	chatService := llmChat.NewServiceImpl(echoGenerator{}, repo, logger)
	return api.SetupRouter(&api.Config{
		ItineraryHandler: itinerary.NewHandler(itineraryService, repo, logger),
		ChatHandler:      llmChat.NewHandlerImpl(chatService, logger),
	})
}

func BenchmarkBuildPrompt(b *testing.B) {
	req := benchTrip()
	agg := benchAggregation(25)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := itinerary.BuildPrompt(req, agg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDedupe(b *testing.B) {
	places := benchAggregation(200).Places
	// every place twice, as when two interests overlap
	places = append(places, places...)

	b.ReportAllocs()
	for b.Loop() {
		_ = aggregator.Dedupe(places, func(p types.Place) string { return p.ID })
	}
}

func BenchmarkCreateItinerary(b *testing.B) {
	router := setupBenchmarkRouter()
	body := `{"country":"France","city":"Paris","startDate":"2024-06-01","endDate":"2024-06-04","budget":3000,"persons":2,"interests":["museums"]}`

	b.ReportAllocs()
	for b.Loop() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/itineraries", strings.NewReader(body)))
		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", w.Code)
		}
	}
}

func BenchmarkConcurrentChat(b *testing.B) {
	router := setupBenchmarkRouter()
	body := `{"itinerary":"Day 1: Louvre","history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}],"message":"Any dinner tips?"}`

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body)))
		}
	})
}
