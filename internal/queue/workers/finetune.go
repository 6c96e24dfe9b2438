package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"github.com/duhsoft/aigateway/internal/finetune"
	"github.com/duhsoft/aigateway/internal/queue"
)

// FinetuneWorker polls the provider for a fine-tuning job's status and
// mirrors it into the local row, re-scheduling itself until the job reaches
// a terminal state.
type FinetuneWorker struct {
	jobs        *finetune.Service
	queueClient *queue.Client
}

func NewFinetuneWorker(jobs *finetune.Service, qc *queue.Client) *FinetuneWorker {
	return &FinetuneWorker{jobs: jobs, queueClient: qc}
}

func (w *FinetuneWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.FinetunePollPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("parse job ID: %w", err)
	}

	done, err := w.jobs.Sync(ctx, jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		slog.Warn("fine-tuning job gone before poll", "job_id", jobID)
		return nil
	}
	if err != nil {
		// A transient provider error should not end polling; try again on
		// the next tick.
		slog.Warn("fine-tuning poll failed", "job_id", jobID, "error", err)
	}

	if done {
		slog.Info("fine-tuning job finished", "job_id", jobID)
		return nil
	}

	if err := w.queueClient.EnqueueFinetunePoll(payload, finetune.PollInterval); err != nil {
		return fmt.Errorf("reschedule poll: %w", err)
	}
	return nil
}
