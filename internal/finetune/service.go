package finetune

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duhsoft/aigateway/internal/llm"
	"github.com/duhsoft/aigateway/internal/models"
	"github.com/duhsoft/aigateway/internal/queue"
	"github.com/duhsoft/aigateway/internal/storage"
)

const jobColumns = `id, assistant_id, provider_job_id, provider_file_id, base_model, result_model, status, hyperparams, metrics, error, started_at, completed_at, created_at`

// PollInterval is how long the worker waits between provider status checks.
const PollInterval = 30 * time.Second

// Service runs fine-tuning jobs against the provider and mirrors their state
// into local rows, so job history survives provider-side retention limits.
type Service struct {
	db     *pgxpool.Pool
	store  storage.Storage
	client *llm.ResponseClient
	queue  *queue.Client
}

func NewService(db *pgxpool.Pool, store storage.Storage, client *llm.ResponseClient, qc *queue.Client) *Service {
	return &Service{db: db, store: store, client: client, queue: qc}
}

// StartJob validates the dataset, uploads it, creates the provider job and
// records it locally. The returned job is `pending`; the polling worker
// advances it from there.
func (s *Service) StartJob(ctx context.Context, assistantID uuid.UUID, baseModel, filename string, dataset io.Reader, hyperparams json.RawMessage) (*models.FineTuningJob, error) {
	data, err := io.ReadAll(dataset)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	stats, err := ValidateJSONL(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("validate dataset: %w", err)
	}
	slog.Info("dataset validated", "filename", filename, "examples", stats.Examples, "tokens", stats.Tokens)

	localPath, err := s.store.Save(ctx, "finetune/"+uuid.NewString()+"-"+filename, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("save dataset: %w", err)
	}

	file, err := s.client.UploadTrainingFile(ctx, localPath, "fine-tune")
	if err != nil {
		return nil, fmt.Errorf("upload dataset: %w", err)
	}

	providerJob, err := s.client.CreateFineTuningJob(ctx, llm.FineTuneRequest{
		TrainingFileID:  file.ID,
		Model:           baseModel,
		Hyperparameters: hyperparams,
	})
	if err != nil {
		return nil, fmt.Errorf("create provider job: %w", err)
	}

	now := time.Now().UTC()
	if len(hyperparams) == 0 {
		hyperparams = json.RawMessage(`{}`)
	}
	metrics, _ := json.Marshal(map[string]any{"dataset": stats})

	var job models.FineTuningJob
	err = s.db.QueryRow(ctx,
		`INSERT INTO fine_tuning_jobs (id, assistant_id, provider_job_id, provider_file_id, base_model, status, hyperparams, metrics, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+jobColumns,
		uuid.New(), assistantID, providerJob.ID, file.ID, baseModel, models.JobStatusPending, hyperparams, metrics, now,
	).Scan(scanJobDest(&job)...)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	if err := s.queue.EnqueueFinetunePoll(queue.FinetunePollPayload{JobID: job.ID.String()}, PollInterval); err != nil {
		slog.Error("failed to enqueue job poll", "job_id", job.ID, "error", err)
	}

	return &job, nil
}

func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*models.FineTuningJob, error) {
	var job models.FineTuningJob
	err := s.db.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM fine_tuning_jobs WHERE id = $1`, id,
	).Scan(scanJobDest(&job)...)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

func (s *Service) ListJobs(ctx context.Context, assistantID uuid.UUID) ([]models.FineTuningJob, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+jobColumns+` FROM fine_tuning_jobs WHERE assistant_id = $1 ORDER BY created_at DESC`,
		assistantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.FineTuningJob
	for rows.Next() {
		var job models.FineTuningJob
		if err := rows.Scan(scanJobDest(&job)...); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// CancelJob cancels at the provider first; the local row only flips once the
// provider confirmed, so status never claims a cancellation that did not
// happen.
func (s *Service) CancelJob(ctx context.Context, id uuid.UUID) (*models.FineTuningJob, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if models.TerminalJobStatus(job.Status) {
		return job, nil
	}

	if _, err := s.client.CancelFineTuningJob(ctx, job.ProviderJobID); err != nil {
		return nil, fmt.Errorf("cancel provider job: %w", err)
	}

	return s.updateFromProvider(ctx, job, models.JobStatusCancelled, "", "", nil)
}

// Sync fetches the provider's view of the job and mirrors it into the local
// row. It reports whether the job reached a terminal state.
func (s *Service) Sync(ctx context.Context, id uuid.UUID) (bool, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return false, err
	}
	if models.TerminalJobStatus(job.Status) {
		return true, nil
	}

	providerJob, err := s.client.GetFineTuningJob(ctx, job.ProviderJobID)
	if err != nil {
		return false, fmt.Errorf("fetch provider job: %w", err)
	}

	status := mapProviderStatus(providerJob.Status)
	errMsg := ""
	if providerJob.Error != nil {
		errMsg = providerJob.Error.Message
	}

	var completedAt *time.Time
	if models.TerminalJobStatus(status) && providerJob.FinishedAt > 0 {
		t := time.Unix(providerJob.FinishedAt, 0).UTC()
		completedAt = &t
	}

	if _, err := s.updateFromProvider(ctx, job, status, providerJob.FineTunedModel, errMsg, completedAt); err != nil {
		return false, err
	}
	return models.TerminalJobStatus(status), nil
}

func (s *Service) updateFromProvider(ctx context.Context, job *models.FineTuningJob, status, resultModel, errMsg string, completedAt *time.Time) (*models.FineTuningJob, error) {
	if completedAt == nil && models.TerminalJobStatus(status) {
		t := time.Now().UTC()
		completedAt = &t
	}

	var updated models.FineTuningJob
	err := s.db.QueryRow(ctx,
		`UPDATE fine_tuning_jobs
		 SET status = $1, result_model = $2, error = $3, completed_at = COALESCE($4, completed_at)
		 WHERE id = $5
		 RETURNING `+jobColumns,
		status, resultModel, errMsg, completedAt, job.ID,
	).Scan(scanJobDest(&updated)...)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return &updated, nil
}

// mapProviderStatus folds OpenAI job states into the local lifecycle.
func mapProviderStatus(status string) string {
	switch status {
	case "validating_files", "queued", "pending":
		return models.JobStatusPending
	case "running":
		return models.JobStatusRunning
	case "succeeded":
		return models.JobStatusCompleted
	case "failed":
		return models.JobStatusFailed
	case "cancelled":
		return models.JobStatusCancelled
	default:
		return models.JobStatusRunning
	}
}

func scanJobDest(job *models.FineTuningJob) []any {
	return []any{
		&job.ID, &job.AssistantID, &job.ProviderJobID, &job.ProviderFile,
		&job.BaseModel, &job.ResultModel, &job.Status, &job.Hyperparams,
		&job.Metrics, &job.Error, &job.StartedAt, &job.CompletedAt, &job.CreatedAt,
	}
}
