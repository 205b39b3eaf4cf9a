package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	ProviderGemini     = "gemini"
	DefaultGeminiModel = "gemini-2.0-flash"
)

type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float32, timeout time.Duration, logger *slog.Logger) (*GeminiClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewGeminiClient")
	defer span.End()

	if apiKey == "" {
		err := errors.New("gemini api key is not set")
		span.RecordError(err)
		span.SetStatus(codes.Error, "API key not set")
		return nil, err
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	span.SetStatus(codes.Ok, "AI client created successfully")
	return &GeminiClient{client: client, model: model, temperature: temperature, logger: logger}, nil
}

func (c *GeminiClient) Model() string { return c.model }

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GeminiGenerate", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", c.model),
	))
	defer span.End()

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(c.temperature)}
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		perr := geminiError(err)
		span.RecordError(perr)
		span.SetStatus(codes.Error, "Failed to generate content")
		c.logger.ErrorContext(ctx, "Gemini request failed",
			slog.String("model", c.model),
			slog.Int("status", perr.StatusCode),
			slog.Any("error", err))
		return "", perr
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		span.SetStatus(codes.Error, "empty response")
		return "", types.ErrEmptyGeneration
	}
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "Content generated successfully")
	return text, nil
}

func geminiError(err error) *types.ProviderError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &types.ProviderError{Provider: ProviderGemini, StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &types.ProviderError{Provider: ProviderGemini, StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return &types.ProviderError{Provider: ProviderGemini, StatusCode: http.StatusBadGateway, Message: err.Error()}
}
