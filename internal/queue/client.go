package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/duhsoft/aigateway/internal/config"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueDocumentProcess schedules one document for extraction and
// embedding. MaxRetry is zero: a failed document stays `failed` until a
// client re-uploads it, it is never retried behind the caller's back.
func (c *Client) EnqueueDocumentProcess(payload DocumentProcessPayload) error {
	return c.enqueue(TypeDocumentProcess, payload, asynq.MaxRetry(0), asynq.Timeout(10*time.Minute))
}

// EnqueueFinetunePoll schedules a status check for a provider fine-tuning
// job, optionally delayed.
func (c *Client) EnqueueFinetunePoll(payload FinetunePollPayload, delay time.Duration) error {
	opts := []asynq.Option{asynq.MaxRetry(0), asynq.Timeout(time.Minute)}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}
	return c.enqueue(TypeFinetunePoll, payload, opts...)
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
