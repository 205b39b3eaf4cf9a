//go:build integration

package generativeAI

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_Generate_Integration(t *testing.T) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GOOGLE_GEMINI_API_KEY not set")
	}
	ctx := context.Background()

	client, err := NewGeminiClient(ctx, apiKey, DefaultGeminiModel, 0.1, 30*time.Second, discardLogger())
	require.NoError(t, err)

	text, err := client.Generate(ctx, "What is the capital of Portugal? Answer with one word.")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(text), "lisbon")
}

func TestTogetherClient_Generate_Integration(t *testing.T) {
	apiKey := os.Getenv("TOGETHER_AI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: TOGETHER_AI_API_KEY not set")
	}

	client := NewTogetherClient(apiKey, discardLogger(), WithTemperature(0.1))
	text, err := client.Generate(context.Background(), "List 3 must-visit attractions in Paris, France. Keep it brief.")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}
