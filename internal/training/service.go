package training

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duhsoft/aigateway/internal/cache"
	"github.com/duhsoft/aigateway/internal/models"
	"github.com/duhsoft/aigateway/internal/queue"
	"github.com/duhsoft/aigateway/internal/storage"
	"github.com/duhsoft/aigateway/internal/vectorstore"
)

const docColumns = `id, assistant_id, filename, content_type, file_size, file_path, status, metadata, processed_at, created_at`

// DB is the subset of pgxpool.Pool the service uses, split out so tests can
// substitute a fake.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Enqueuer schedules document processing; *queue.Client in production.
type Enqueuer interface {
	EnqueueDocumentProcess(payload queue.DocumentProcessPayload) error
}

// Service owns training documents: upload intake, status transitions and
// aggregate stats. Heavy processing happens in the worker, not here.
type Service struct {
	db     DB
	store  storage.Storage
	chunks vectorstore.VectorStore
	queue  Enqueuer
	cache  *cache.Cache
}

func NewService(db DB, store storage.Storage, chunks vectorstore.VectorStore, qc Enqueuer, c *cache.Cache) *Service {
	return &Service{db: db, store: store, chunks: chunks, queue: qc, cache: c}
}

// Upload is one raw file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// Ingest persists each upload, records it as `uploaded` and enqueues async
// processing, then returns immediately; callers observe completion through
// Stats. A failing upload is logged and skipped, never aborting its batch.
// Uploads are create-only: re-uploading a filename creates a new document.
func (s *Service) Ingest(ctx context.Context, assistantID uuid.UUID, uploads []Upload) []models.TrainingDocument {
	var docs []models.TrainingDocument

	for _, up := range uploads {
		doc, err := s.ingestOne(ctx, assistantID, up)
		if err != nil {
			slog.Error("failed to ingest document", "filename", up.Filename, "error", err)
			continue
		}
		docs = append(docs, *doc)
	}

	return docs
}

func (s *Service) ingestOne(ctx context.Context, assistantID uuid.UUID, up Upload) (*models.TrainingDocument, error) {
	path := "training/" + up.Filename
	if _, err := s.store.Save(ctx, path, up.Data); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	metadata, _ := json.Marshal(map[string]any{"original_filename": up.Filename})

	var doc models.TrainingDocument
	err := s.db.QueryRow(ctx,
		`INSERT INTO training_documents (id, assistant_id, filename, content_type, file_size, file_path, status, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+docColumns,
		uuid.New(), assistantID, up.Filename, up.ContentType, up.Size, path, models.DocStatusUploaded, metadata,
	).Scan(&doc.ID, &doc.AssistantID, &doc.Filename, &doc.ContentType, &doc.FileSize,
		&doc.FilePath, &doc.Status, &doc.Metadata, &doc.ProcessedAt, &doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	if err := s.queue.EnqueueDocumentProcess(queue.DocumentProcessPayload{DocumentID: doc.ID.String()}); err != nil {
		// Without a queued task the row would sit in `uploaded` forever and
		// keep Stats at "active". Roll the intake back and report the failure.
		if _, derr := s.db.Exec(ctx, `DELETE FROM training_documents WHERE id = $1`, doc.ID); derr != nil {
			slog.Error("failed to roll back unqueued document", "document_id", doc.ID, "error", derr)
		}
		if derr := s.store.Delete(ctx, path); derr != nil {
			slog.Warn("failed to delete stored file", "path", path, "error", derr)
		}
		return nil, fmt.Errorf("enqueue processing: %w", err)
	}

	s.invalidateStats(ctx, assistantID)
	return &doc, nil
}

func (s *Service) GetDocument(ctx context.Context, id uuid.UUID) (*models.TrainingDocument, error) {
	var doc models.TrainingDocument
	err := s.db.QueryRow(ctx,
		`SELECT `+docColumns+` FROM training_documents WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.AssistantID, &doc.Filename, &doc.ContentType, &doc.FileSize,
		&doc.FilePath, &doc.Status, &doc.Metadata, &doc.ProcessedAt, &doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

func (s *Service) ListDocuments(ctx context.Context, assistantID uuid.UUID) ([]models.TrainingDocument, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+docColumns+` FROM training_documents WHERE assistant_id = $1 ORDER BY created_at DESC`,
		assistantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.TrainingDocument
	for rows.Next() {
		var doc models.TrainingDocument
		if err := rows.Scan(&doc.ID, &doc.AssistantID, &doc.Filename, &doc.ContentType, &doc.FileSize,
			&doc.FilePath, &doc.Status, &doc.Metadata, &doc.ProcessedAt, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes the document, its chunks and its stored file.
func (s *Service) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.chunks.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if doc.FilePath != "" {
		if err := s.store.Delete(ctx, doc.FilePath); err != nil {
			slog.Warn("failed to delete stored file", "path", doc.FilePath, "error", err)
		}
	}

	_, err = s.db.Exec(ctx, `DELETE FROM training_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.invalidateStats(ctx, doc.AssistantID)
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.db.Exec(ctx, `UPDATE training_documents SET status = $1 WHERE id = $2`, status, id)
	return err
}

func (s *Service) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE training_documents SET status = $1, processed_at = $2 WHERE id = $3`,
		models.DocStatusProcessed, time.Now().UTC(), id)
	return err
}

const statsCacheTTL = 30 * time.Second

// Stats aggregates ingestion progress. processing_status is "complete" only
// when every document of the assistant reached `processed`.
func (s *Service) Stats(ctx context.Context, assistantID uuid.UUID) (*models.TrainingStats, error) {
	key := statsCacheKey(assistantID)
	if s.cache != nil {
		var cached models.TrainingStats
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Debug("stats cache read failed", "error", err)
		}
	}

	var stats models.TrainingStats
	err := s.db.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE status = $2)
		 FROM training_documents WHERE assistant_id = $1`,
		assistantID, models.DocStatusProcessed,
	).Scan(&stats.TotalDocuments, &stats.ProcessedDocuments)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	stats.TotalChunks, err = s.chunks.CountByAssistant(ctx, assistantID)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	if stats.ProcessedDocuments < stats.TotalDocuments {
		stats.ProcessingStatus = "active"
	} else {
		stats.ProcessingStatus = "complete"
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, statsCacheTTL); err != nil {
			slog.Debug("stats cache set failed", "error", err)
		}
	}

	return &stats, nil
}

// RequeueStale re-enqueues documents stuck in `processing`, e.g. after a
// worker crash mid-pipeline. Called once at worker startup.
func (s *Service) RequeueStale(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id FROM training_documents WHERE status = $1`, models.DocStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("list stale documents: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan stale document: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	requeued := 0
	for _, id := range ids {
		if err := s.queue.EnqueueDocumentProcess(queue.DocumentProcessPayload{DocumentID: id.String()}); err != nil {
			slog.Error("failed to requeue document", "document_id", id, "error", err)
			continue
		}
		requeued++
	}
	return requeued, nil
}

func (s *Service) invalidateStats(ctx context.Context, assistantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey(assistantID)); err != nil {
		slog.Debug("stats cache invalidation failed", "error", err)
	}
}

func statsCacheKey(assistantID uuid.UUID) string {
	return "training:stats:" + assistantID.String()
}
