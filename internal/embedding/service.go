package embedding

import (
	"context"
	"fmt"

	"github.com/duhsoft/aigateway/internal/llm"
)

// Embedder is what ingestion and retrieval depend on. Both sides must use
// the same implementation, or similarity scores are meaningless.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// Service generates embeddings through the configured LLM gateway, batching
// input to stay under provider limits.
type Service struct {
	gateway *llm.Gateway
	dim     int
}

func NewService(gw *llm.Gateway, dim int) *Service {
	return &Service{gateway: gw, dim: dim}
}

func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	const batchSize = 100
	var all [][]float32

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := s.gateway.Embed(ctx, llm.EmbeddingRequest{Input: texts[i:end]})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/batchSize, err)
		}

		for _, e := range resp.Embeddings {
			if s.dim > 0 && len(e) != s.dim {
				return nil, fmt.Errorf("embedding dimension %d, want %d", len(e), s.dim)
			}
		}
		all = append(all, resp.Embeddings...)
	}

	return all, nil
}

func (s *Service) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}
