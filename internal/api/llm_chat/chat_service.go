// Package llmChat answers follow-up questions about a generated itinerary.
package llmChat

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	generativeAI "github.com/FACorreiaa/go-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// FallbackReply is shown when the model cannot answer.
const FallbackReply = "Sorry, I encountered an error. Please try again."

// TurnStore records prompt/response pairs for training data.
type TurnStore interface {
	StoreChatTurn(ctx context.Context, rec types.ChatRecord) error
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Reply always answers; model failures turn into FallbackReply.
	Reply(ctx context.Context, req types.ChatRequest) types.ChatResponse
}

type ServiceImpl struct {
	generator generativeAI.Generator
	store     TurnStore
	metrics   *metrics.AppMetrics
	logger    *slog.Logger
}

func NewServiceImpl(generator generativeAI.Generator, store TurnStore, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		generator: generator,
		store:     store,
		metrics:   metrics.Get(),
		logger:    logger,
	}
}

func (s *ServiceImpl) Reply(ctx context.Context, req types.ChatRequest) types.ChatResponse {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "Reply", trace.WithAttributes(
		attribute.Int("history.length", len(req.History)),
	))
	defer span.End()

	prompt := BuildChatPrompt(req)
	model := s.generator.Model()

	start := time.Now()
	text, err := s.generator.Generate(ctx, prompt)
	latency := time.Since(start)

	rec := types.ChatRecord{
		UserPrompt:       req.Message,
		AIResponse:       text,
		ModelName:        model,
		Status:           types.GenerationSuccess,
		ProcessingTimeMs: latency.Milliseconds(),
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Chat reply failed", slog.String("model", model), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		text = FallbackReply
		rec.AIResponse = err.Error()
		rec.Status = types.GenerationFailed
	}
	s.metrics.RecordChatReply(ctx, string(rec.Status))

	if storeErr := s.store.StoreChatTurn(context.WithoutCancel(ctx), rec); storeErr != nil {
		s.metrics.RecordPersistenceError(ctx, "store_chat_turn")
		s.logger.ErrorContext(ctx, "Failed to store chat turn", slog.Any("error", storeErr))
	}

	reply := types.ChatTurn{Role: types.RoleAssistant, Content: text}
	history := make([]types.ChatTurn, 0, len(req.History)+2)
	history = append(history, req.History...)
	history = append(history, types.ChatTurn{Role: types.RoleUser, Content: req.Message}, reply)
	return types.ChatResponse{Reply: reply, History: history}
}

// BuildChatPrompt puts the trip preferences, the itinerary and the conversation so far
// ahead of the new question.
func BuildChatPrompt(req types.ChatRequest) string {
	var b strings.Builder
	b.WriteString("You are a helpful travel assistant answering questions about a planned trip.\n")
	if len(req.Preferences) > 0 {
		// map keys are sorted by encoding/json, so the output is stable
		prefs, err := json.Marshal(req.Preferences)
		if err == nil {
			b.WriteString("User preferences: ")
			b.Write(prefs)
			b.WriteString("\n")
		}
	}
	if req.Itinerary != "" {
		b.WriteString("\nCurrent itinerary:\n")
		b.WriteString(req.Itinerary)
		b.WriteString("\n")
	}
	if len(req.History) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, turn := range req.History {
			role := "User"
			if turn.Role == types.RoleAssistant {
				role = "Assistant"
			}
			b.WriteString(role + ": " + turn.Content + "\n")
		}
	}
	b.WriteString("\nUser question: ")
	b.WriteString(req.Message)
	return b.String()
}
