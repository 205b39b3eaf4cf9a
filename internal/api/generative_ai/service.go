package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/go-travel-planner/config"
)

// Generator turns a prompt into text with a hosted model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

var (
	_ Generator = (*TogetherClient)(nil)
	_ Generator = (*GeminiClient)(nil)
)

// NewGenerator builds the generator selected by cfg.Provider.
func NewGenerator(ctx context.Context, cfg config.GenerationConfig, logger *slog.Logger) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderTogether:
		return NewTogetherClient(cfg.APIKey, logger,
			WithModel(cfg.Model),
			WithBaseURL(cfg.BaseURL),
			WithTemperature(cfg.Temperature),
			WithTimeout(cfg.Timeout),
		), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Temperature, cfg.Timeout, logger)
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.Provider)
	}
}
