package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

// FineTuneJob mirrors the provider's fine_tuning/jobs object, limited to the
// fields the gateway reads back.
type FineTuneJob struct {
	ID              string          `json:"id"`
	Model           string          `json:"model"`
	Status          string          `json:"status"`
	FineTunedModel  string          `json:"fine_tuned_model"`
	TrainingFile    string          `json:"training_file"`
	FinishedAt      int64           `json:"finished_at"`
	Error           *FineTuneError  `json:"error"`
	Hyperparameters json.RawMessage `json:"hyperparameters"`
}

type FineTuneError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProviderFile mirrors the provider's files object.
type ProviderFile struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Purpose  string `json:"purpose"`
	Bytes    int64  `json:"bytes"`
}

type FineTuneRequest struct {
	TrainingFileID  string          `json:"training_file"`
	Model           string          `json:"model"`
	Hyperparameters json.RawMessage `json:"hyperparameters,omitempty"`
	Suffix          string          `json:"suffix,omitempty"`
}

func (c *ResponseClient) CreateFineTuningJob(ctx context.Context, req FineTuneRequest) (*FineTuneJob, error) {
	payload := map[string]any{
		"training_file": req.TrainingFileID,
		"model":         req.Model,
	}
	if len(req.Hyperparameters) > 0 {
		payload["hyperparameters"] = req.Hyperparameters
	}
	if req.Suffix != "" {
		payload["suffix"] = req.Suffix
	}

	raw, err := c.do(ctx, http.MethodPost, "/fine_tuning/jobs", nil, payload, restTimeout)
	if err != nil {
		return nil, err
	}
	return decodeFineTuneJob(raw)
}

func (c *ResponseClient) GetFineTuningJob(ctx context.Context, jobID string) (*FineTuneJob, error) {
	raw, err := c.do(ctx, http.MethodGet, "/fine_tuning/jobs/"+jobID, nil, nil, restTimeout)
	if err != nil {
		return nil, err
	}
	return decodeFineTuneJob(raw)
}

// ListFineTuningJobs degrades to an empty list on failure, same policy as
// ListConversations.
func (c *ResponseClient) ListFineTuningJobs(ctx context.Context, limit int, after string) []json.RawMessage {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if after != "" {
		query.Set("after", after)
	}

	raw, err := c.do(ctx, http.MethodGet, "/fine_tuning/jobs", query, nil, restTimeout)
	if err != nil {
		slog.Warn("list fine-tuning jobs failed", "error", err)
		return nil
	}
	return decodeDataList(raw)
}

func (c *ResponseClient) CancelFineTuningJob(ctx context.Context, jobID string) (*FineTuneJob, error) {
	raw, err := c.do(ctx, http.MethodPost, "/fine_tuning/jobs/"+jobID+"/cancel", nil, nil, restTimeout)
	if err != nil {
		return nil, err
	}
	return decodeFineTuneJob(raw)
}

// UploadTrainingFile uploads a local JSONL file to the provider's files
// endpoint via multipart form.
func (c *ResponseClient) UploadTrainingFile(ctx context.Context, path, purpose string) (*ProviderFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open training file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy file data: %w", err)
	}
	if err := mw.WriteField("purpose", purpose); err != nil {
		return nil, fmt.Errorf("write purpose field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.rest.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: "openai", Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode >= 400 {
		return nil, &ProviderError{
			Provider: "openai",
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("upload file: %s", string(data)),
		}
	}

	var pf ProviderFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, &ProviderError{Provider: "openai", Err: err}
	}
	return &pf, nil
}

// ListFiles degrades to an empty list on failure.
func (c *ResponseClient) ListFiles(ctx context.Context) []json.RawMessage {
	raw, err := c.do(ctx, http.MethodGet, "/files", nil, nil, restTimeout)
	if err != nil {
		slog.Warn("list files failed", "error", err)
		return nil
	}
	return decodeDataList(raw)
}

func (c *ResponseClient) DeleteFile(ctx context.Context, fileID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/files/"+fileID, nil, nil, restTimeout)
	return err
}

func decodeFineTuneJob(raw json.RawMessage) (*FineTuneJob, error) {
	var job FineTuneJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, &ProviderError{Provider: "openai", Err: err}
	}
	return &job, nil
}
