package llm

import (
	"context"

	"github.com/duhsoft/aigateway/internal/config"
)

// Gateway owns the single configured provider. Each call is one best-effort
// attempt: no retry, no backoff, no caching. A missing credential is held as
// a ConfigError and surfaced on every call instead of at startup, so the API
// still serves health checks and non-AI routes.
type Gateway struct {
	provider       Provider
	defaultModel   string
	embeddingModel string
	err            *ConfigError
}

func NewGateway(cfg config.AIConfig) *Gateway {
	g := &Gateway{
		defaultModel:   cfg.DefaultModel,
		embeddingModel: cfg.EmbeddingModel,
	}

	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIKey == "" {
			g.err = &ConfigError{Provider: "openai", Missing: "OPENAI_API_KEY"}
			return g
		}
		g.provider = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	case "anthropic":
		if cfg.AnthropicKey == "" {
			g.err = &ConfigError{Provider: "anthropic", Missing: "ANTHROPIC_API_KEY"}
			return g
		}
		g.provider = NewAnthropicProvider(cfg.AnthropicKey)
	case "ollama":
		g.provider = NewOllamaProvider(cfg.OllamaURL)
	default:
		g.provider = NewDemoProvider(cfg.EmbeddingDim)
	}

	return g
}

func (g *Gateway) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	if req.Model == "" {
		req.Model = g.defaultModel
	}

	res, err := g.provider.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	res.EstimatedCost = CalculateCost(res.Model, res.Usage.PromptTokens, res.Usage.CompletionTokens)
	return res, nil
}

func (g *Gateway) Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	if req.Model == "" {
		req.Model = g.embeddingModel
	}
	return g.provider.Embed(ctx, req)
}

func (g *Gateway) ListModels() []ModelInfo {
	if g.provider == nil {
		return nil
	}
	var models []ModelInfo
	for _, m := range g.provider.Models() {
		models = append(models, ModelInfo{Provider: g.provider.Name(), Model: m})
	}
	return models
}

func (g *Gateway) Close() {
	if p, ok := g.provider.(*OllamaProvider); ok {
		p.Close()
	}
}
