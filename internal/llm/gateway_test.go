package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duhsoft/aigateway/internal/config"
)

func TestGatewayMissingOpenAIKey(t *testing.T) {
	gw := NewGateway(config.AIConfig{Provider: "openai"})

	// Construction never fails; the config error surfaces on every call.
	_, err := gw.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	_, err = gw.Embed(context.Background(), EmbeddingRequest{Input: []string{"hi"}})
	assert.True(t, IsConfigError(err))

	assert.Empty(t, gw.ListModels())
}

func TestGatewayMissingAnthropicKey(t *testing.T) {
	gw := NewGateway(config.AIConfig{Provider: "anthropic"})

	_, err := gw.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestGatewayDefaultsToDemo(t *testing.T) {
	gw := NewGateway(config.AIConfig{Provider: "demo", EmbeddingDim: 8, DefaultModel: "demo-gpt-4o-mini"})

	models := gw.ListModels()
	require.Len(t, models, 1)
	assert.Equal(t, "demo", models[0].Provider)

	resp, err := gw.Embed(context.Background(), EmbeddingRequest{Input: []string{"hello world"}})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 1)
	assert.Len(t, resp.Embeddings[0], 8)
}

func TestGatewayFillsDefaultModel(t *testing.T) {
	gw := NewGateway(config.AIConfig{Provider: "demo", EmbeddingDim: 8, DefaultModel: "demo-gpt-4o-mini"})
	// Demo always answers with its own model name, so the filled default is
	// observable through the result.
	gw.provider = &DemoProvider{embeddingDim: 8}

	res, err := gw.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "demo-gpt-4o-mini", res.Model)
}

func TestCalculateCost(t *testing.T) {
	assert.InDelta(t, 0.03+0.12, CalculateCost("gpt-4", 1000, 2000), 1e-9)
	assert.Zero(t, CalculateCost("demo-gpt-4o-mini", 1000, 1000))
}
