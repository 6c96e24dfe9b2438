package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TrainingDocument is an uploaded file that grounds an assistant's replies.
// Status moves uploaded -> processing -> processed | failed; chunks exist
// only for processed documents.
type TrainingDocument struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	AssistantID uuid.UUID       `json:"assistant_id" db:"assistant_id"`
	Filename    string          `json:"filename" db:"filename"`
	ContentType string          `json:"content_type" db:"content_type"`
	FileSize    int64           `json:"file_size" db:"file_size"`
	FilePath    string          `json:"file_path,omitempty" db:"file_path"`
	Status      string          `json:"status" db:"status"`
	Metadata    json.RawMessage `json:"metadata" db:"metadata"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// DocumentChunk is immutable once written. chunk_index is zero-based and
// contiguous within its document.
type DocumentChunk struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	DocumentID uuid.UUID       `json:"document_id" db:"document_id"`
	ChunkIndex int             `json:"chunk_index" db:"chunk_index"`
	Content    string          `json:"content" db:"content"`
	Embedding  []float32       `json:"-" db:"embedding"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	DocStatusUploaded   = "uploaded"
	DocStatusProcessing = "processing"
	DocStatusProcessed  = "processed"
	DocStatusFailed     = "failed"
)

// TrainingStats aggregates ingestion progress for one assistant.
type TrainingStats struct {
	TotalDocuments     int    `json:"total_documents"`
	TotalChunks        int    `json:"total_chunks"`
	ProcessedDocuments int    `json:"processed_documents"`
	ProcessingStatus   string `json:"processing_status"`
}
