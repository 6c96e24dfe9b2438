package llm

import (
	"context"
)

// Provider abstracts a completion backend (demo, OpenAI, Anthropic, Ollama).
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error)
	Name() string
	Models() []string
}

// CompletionRequest is the provider-agnostic input for a single completion.
type CompletionRequest struct {
	Prompt       string  `json:"prompt"`
	Model        string  `json:"model,omitempty"`
	Instructions string  `json:"instructions,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
}

// Usage carries token counts as reported (or estimated) by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type FinishReason string

const (
	FinishStop   FinishReason = "stop"
	FinishLength FinishReason = "length"
	FinishError  FinishReason = "error"
)

// CompletionResult is the uniform output shape every provider maps into.
type CompletionResult struct {
	Content      string       `json:"content"`
	Model        string       `json:"model"`
	Usage        Usage        `json:"usage"`
	FinishReason FinishReason `json:"finish_reason"`

	// EstimatedCost is a USD estimate from the static pricing table; zero
	// for unknown models.
	EstimatedCost float64 `json:"estimated_cost,omitempty"`
}

// EmbeddingRequest is the input for embedding generation.
type EmbeddingRequest struct {
	Model string   `json:"model,omitempty"`
	Input []string `json:"input"`
}

// EmbeddingResponse is the output from embedding generation.
type EmbeddingResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
	Tokens     int         `json:"tokens"`
}

// ModelInfo describes an available model.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}
