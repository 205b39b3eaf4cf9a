package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ItineraryRequestsTotal    metric.Int64Counter
	GenerationDurationSeconds metric.Float64Histogram
	ProviderErrorsTotal       metric.Int64Counter
	PersistenceErrorsTotal    metric.Int64Counter
	ChatRepliesTotal          metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// New creates the instruments on the given meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	m.ItineraryRequestsTotal, err = meter.Int64Counter(
		"itinerary_requests_total",
		metric.WithDescription("Itinerary pipeline runs by final stage"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("itinerary_requests_total: %w", err)
	}

	m.GenerationDurationSeconds, err = meter.Float64Histogram(
		"generation_duration_seconds",
		metric.WithDescription("Duration of text generation calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("generation_duration_seconds: %w", err)
	}

	m.ProviderErrorsTotal, err = meter.Int64Counter(
		"provider_errors_total",
		metric.WithDescription("Failed external provider calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("provider_errors_total: %w", err)
	}

	m.PersistenceErrorsTotal, err = meter.Int64Counter(
		"persistence_errors_total",
		metric.WithDescription("Failed best-effort database writes"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("persistence_errors_total: %w", err)
	}

	m.ChatRepliesTotal, err = meter.Int64Counter(
		"chat_replies_total",
		metric.WithDescription("Follow-up chat replies by status"),
		metric.WithUnit("{reply}"),
	)
	if err != nil {
		return nil, fmt.Errorf("chat_replies_total: %w", err)
	}

	return m, nil
}

// Get returns the process-wide instruments, created once from the global MeterProvider.
// Until a provider is installed the global meter is a no-op, which keeps tests quiet.
func Get() *AppMetrics {
	once.Do(func() {
		m, err := New(otel.GetMeterProvider().Meter("go-travel-planner"))
		if err != nil {
			panic(fmt.Sprintf("metrics instruments not initialized: %v", err))
		}
		appMetrics = m
	})
	return appMetrics
}

func (m *AppMetrics) RecordRequest(ctx context.Context, stage string) {
	m.ItineraryRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *AppMetrics) RecordGeneration(ctx context.Context, model string, status string, d time.Duration) {
	m.GenerationDurationSeconds.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("status", status),
	))
}

func (m *AppMetrics) RecordProviderError(ctx context.Context, provider string) {
	m.ProviderErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

func (m *AppMetrics) RecordPersistenceError(ctx context.Context, op string) {
	m.PersistenceErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *AppMetrics) RecordChatReply(ctx context.Context, status string) {
	m.ChatRepliesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
