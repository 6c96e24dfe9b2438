package vectorstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/duhsoft/aigateway/internal/models"
)

type SearchOptions struct {
	AssistantID uuid.UUID
	TopK        int
}

type SearchResult struct {
	ChunkID    uuid.UUID `json:"chunk_id"`
	DocumentID uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Score      float64   `json:"score"`
}

// VectorStore persists document chunks and answers similarity queries.
// Search results are scoped to one assistant's processed documents; chunks
// of other assistants are never eligible.
type VectorStore interface {
	InsertChunks(ctx context.Context, chunks []models.DocumentChunk) error
	SimilaritySearch(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error)
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
	CountByAssistant(ctx context.Context, assistantID uuid.UUID) (int, error)
}
