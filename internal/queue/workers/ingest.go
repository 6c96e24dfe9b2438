package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"github.com/duhsoft/aigateway/internal/embedding"
	"github.com/duhsoft/aigateway/internal/models"
	"github.com/duhsoft/aigateway/internal/queue"
	"github.com/duhsoft/aigateway/internal/storage"
	"github.com/duhsoft/aigateway/internal/training"
	"github.com/duhsoft/aigateway/internal/vectorstore"
	"github.com/duhsoft/aigateway/pkg/chunker"
	"github.com/duhsoft/aigateway/pkg/textextract"
	"github.com/duhsoft/aigateway/pkg/tokenizer"
)

// IngestWorker runs the extraction pipeline for one uploaded document:
// extract text, chunk it, embed the chunks and store them for retrieval.
type IngestWorker struct {
	docs      *training.Service
	store     storage.Storage
	embedder  embedding.Embedder
	chunks    vectorstore.VectorStore
	chunkSize int
}

func NewIngestWorker(docs *training.Service, store storage.Storage, embedder embedding.Embedder, chunks vectorstore.VectorStore, chunkSize int) *IngestWorker {
	return &IngestWorker{
		docs:      docs,
		store:     store,
		embedder:  embedder,
		chunks:    chunks,
		chunkSize: chunkSize,
	}
}

func (w *IngestWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return fmt.Errorf("parse document ID: %w", err)
	}

	doc, err := w.docs.GetDocument(ctx, docID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Deleted between enqueue and pickup. Drop the task.
		slog.Warn("document gone before processing", "document_id", docID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	slog.Info("processing document", "document_id", docID, "filename", doc.Filename)

	if err := w.docs.UpdateStatus(ctx, docID, models.DocStatusProcessing); err != nil {
		return fmt.Errorf("update status to processing: %w", err)
	}

	if err := w.process(ctx, doc); err != nil {
		if uerr := w.docs.UpdateStatus(ctx, docID, models.DocStatusFailed); uerr != nil {
			slog.Error("failed to mark document failed", "document_id", docID, "error", uerr)
		}
		return fmt.Errorf("process document %s: %w", docID, err)
	}

	if err := w.docs.MarkProcessed(ctx, docID); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	slog.Info("document processed", "document_id", docID)
	return nil
}

func (w *IngestWorker) process(ctx context.Context, doc *models.TrainingDocument) error {
	reader, err := w.store.Open(ctx, doc.FilePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	extracted, err := textextract.Extract(bytes.NewReader(data), int64(len(data)), doc.ContentType)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	pieces := chunker.Split(extracted.Content, w.chunkSize)
	if len(pieces) == 0 {
		// Nothing to index; the document still counts as processed.
		return nil
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Content
	}

	embeddings, err := w.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(pieces) {
		return fmt.Errorf("embedding count %d, want %d", len(embeddings), len(pieces))
	}

	rows := make([]models.DocumentChunk, len(pieces))
	for i, p := range pieces {
		rows[i] = models.DocumentChunk{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			ChunkIndex: p.Index,
			Content:    p.Content,
			Embedding:  embeddings[i],
			Metadata:   chunkMetadata(p.Content),
		}
	}

	// Reprocessing after a crash must not duplicate chunks.
	if err := w.chunks.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("clear previous chunks: %w", err)
	}
	if err := w.chunks.InsertChunks(ctx, rows); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	return nil
}

// chunkMetadata records the chunk's byte size and an estimated token count,
// so retrieval budgets can be tuned without re-reading chunk content.
func chunkMetadata(content string) json.RawMessage {
	meta, _ := json.Marshal(map[string]int{
		"chunk_size":  len(content),
		"token_count": tokenizer.CountTokens(content),
	})
	return meta
}
