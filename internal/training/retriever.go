package training

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/duhsoft/aigateway/internal/embedding"
	"github.com/duhsoft/aigateway/internal/vectorstore"
)

// Retriever selects the document context injected into completion prompts.
type Retriever struct {
	embedder  embedding.Embedder
	chunks    vectorstore.VectorStore
	maxChunks int
}

func NewRetriever(embedder embedding.Embedder, chunks vectorstore.VectorStore, maxChunks int) *Retriever {
	if maxChunks <= 0 {
		maxChunks = 10
	}
	return &Retriever{embedder: embedder, chunks: chunks, maxChunks: maxChunks}
}

// GetContext returns processed-chunk text relevant to query, most similar
// first, joined by blank lines. The result stays within a word budget of
// maxTokens/4: assembly stops at the first chunk that would exceed it, even
// if later chunks are smaller. Retrieval is an enhancement, so any failure
// degrades to an empty context instead of propagating.
func (r *Retriever) GetContext(ctx context.Context, assistantID uuid.UUID, query string, maxTokens int) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	vec, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		slog.Warn("context retrieval: embedding failed", "assistant_id", assistantID, "error", err)
		return ""
	}

	results, err := r.chunks.SimilaritySearch(ctx, vec, vectorstore.SearchOptions{
		AssistantID: assistantID,
		TopK:        r.maxChunks,
	})
	if err != nil {
		slog.Warn("context retrieval: similarity search failed", "assistant_id", assistantID, "error", err)
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	budget := maxTokens / 4
	used := 0
	var parts []string

	for _, res := range results {
		words := len(strings.Fields(res.Content))
		if used+words > budget {
			break
		}
		parts = append(parts, res.Content)
		used += words
	}

	return strings.Join(parts, "\n\n")
}
