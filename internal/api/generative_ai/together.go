package generativeAI

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	ProviderTogether = "together"

	DefaultTogetherBaseURL = "https://api.together.xyz/v1"
	DefaultTogetherModel   = "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo"
	DefaultTimeout         = 60 * time.Second
)

// TogetherClient calls Together AI through its OpenAI compatible chat completions API.
type TogetherClient struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

type togetherOptions struct {
	model       string
	baseURL     string
	temperature float32
	httpClient  *http.Client
}

type TogetherOption func(*togetherOptions)

func WithModel(model string) TogetherOption {
	return func(o *togetherOptions) {
		if model != "" {
			o.model = model
		}
	}
}

func WithBaseURL(baseURL string) TogetherOption {
	return func(o *togetherOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

func WithTemperature(t float32) TogetherOption {
	return func(o *togetherOptions) { o.temperature = t }
}

func WithTimeout(d time.Duration) TogetherOption {
	return func(o *togetherOptions) {
		if d > 0 {
			o.httpClient = &http.Client{Timeout: d}
		}
	}
}

func NewTogetherClient(apiKey string, logger *slog.Logger, opts ...TogetherOption) *TogetherClient {
	o := togetherOptions{
		model:      DefaultTogetherModel,
		baseURL:    DefaultTogetherBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(o.baseURL, "/")
	cfg.HTTPClient = o.httpClient

	return &TogetherClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       o.model,
		temperature: o.temperature,
		logger:      logger,
	}
}

func (c *TogetherClient) Model() string { return c.model }

// Generate sends prompt as a single user message and returns the first choice.
func (c *TogetherClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "TogetherGenerate", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", c.model),
	))
	defer span.End()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		perr := togetherError(err)
		span.RecordError(perr)
		span.SetStatus(codes.Error, "chat completion failed")
		c.logger.ErrorContext(ctx, "Together AI request failed",
			slog.String("model", c.model),
			slog.Int("status", perr.StatusCode),
			slog.Any("error", err))
		return "", perr
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		span.SetStatus(codes.Error, "empty completion")
		return "", types.ErrEmptyGeneration
	}

	text := resp.Choices[0].Message.Content
	span.SetAttributes(
		attribute.Int("response.length", len(text)),
		attribute.Int("usage.total_tokens", resp.Usage.TotalTokens),
	)
	span.SetStatus(codes.Ok, "Content generated successfully")
	return text, nil
}

func togetherError(err error) *types.ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &types.ProviderError{Provider: ProviderTogether, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &types.ProviderError{Provider: ProviderTogether, StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return &types.ProviderError{Provider: ProviderTogether, StatusCode: http.StatusBadGateway, Message: err.Error()}
}
