package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/duhsoft/aigateway/internal/models"
)

type PgVectorStore struct {
	db *pgxpool.Pool
}

func NewPgVectorStore(db *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{db: db}
}

// InsertChunks writes all chunks of one document in a single transaction, so
// a document either gets its full chunk set or none.
func (s *PgVectorStore) InsertChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range chunks {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		metadata := c.Metadata
		if len(metadata) == 0 {
			metadata = []byte(`{}`)
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO document_chunks (id, document_id, chunk_index, content, embedding, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, c.DocumentID, c.ChunkIndex, c.Content, pgvector.NewVector(c.Embedding), metadata,
		)
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.ChunkIndex, err)
		}
	}

	return tx.Commit(ctx)
}

// SimilaritySearch ranks an assistant's chunks by cosine similarity to the
// query vector, ties broken by (document_id, chunk_index) ascending. Only
// chunks of processed documents are considered.
func (s *PgVectorStore) SimilaritySearch(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error) {
	if opts.TopK <= 0 {
		opts.TopK = 10
	}

	embedding := pgvector.NewVector(query)

	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.document_id, c.chunk_index, c.content,
		        1 - (c.embedding <=> $1) AS score
		 FROM document_chunks c
		 JOIN training_documents d ON d.id = c.document_id
		 WHERE d.assistant_id = $2 AND d.status = $3
		 ORDER BY c.embedding <=> $1, c.document_id, c.chunk_index
		 LIMIT $4`,
		embedding, opts.AssistantID, models.DocStatusProcessed, opts.TopK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.ChunkIndex, &r.Content, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PgVectorStore) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM document_chunks WHERE document_id = $1", documentID)
	return err
}

func (s *PgVectorStore) CountByAssistant(ctx context.Context, assistantID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM document_chunks c
		 JOIN training_documents d ON d.id = c.document_id
		 WHERE d.assistant_id = $1`,
		assistantID,
	).Scan(&count)
	return count, err
}
