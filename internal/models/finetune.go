package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FineTuningJob tracks a provider-side training run. Status is mirrored from
// the provider by the polling worker until it reaches a terminal state.
type FineTuningJob struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	AssistantID   uuid.UUID       `json:"assistant_id" db:"assistant_id"`
	ProviderJobID string          `json:"provider_job_id,omitempty" db:"provider_job_id"`
	ProviderFile  string          `json:"provider_file_id,omitempty" db:"provider_file_id"`
	BaseModel     string          `json:"base_model" db:"base_model"`
	ResultModel   string          `json:"result_model,omitempty" db:"result_model"`
	Status        string          `json:"status" db:"status"`
	Hyperparams   json.RawMessage `json:"hyperparams" db:"hyperparams"`
	Metrics       json.RawMessage `json:"metrics" db:"metrics"`
	Error         string          `json:"error,omitempty" db:"error"`
	StartedAt     *time.Time      `json:"started_at,omitempty" db:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusCancelled = "cancelled"
)

// TerminalJobStatus reports whether polling can stop.
func TerminalJobStatus(status string) bool {
	switch status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}
