package llm

import (
	"context"
	"encoding/json"
	"log/slog"
)

// The legacy Assistants API (threads, runs, provider-side assistants) was
// replaced by the Responses/Conversations protocol. The methods below remain
// so old call sites keep compiling, but every one of them refuses with
// ErrAssistantsAPI instead of fabricating placeholder data.

// Deprecated: use CreateConversation.
func (c *ResponseClient) CreateThread(context.Context) (json.RawMessage, error) {
	return deprecated("CreateThread")
}

// Deprecated: use CreateResponse with a conversation id.
func (c *ResponseClient) AddThreadMessage(_ context.Context, threadID, role, content string) (json.RawMessage, error) {
	return deprecated("AddThreadMessage")
}

// Deprecated: use CreateResponse.
func (c *ResponseClient) RunAssistant(_ context.Context, threadID, assistantID string) (json.RawMessage, error) {
	return deprecated("RunAssistant")
}

// Deprecated: runs no longer exist.
func (c *ResponseClient) GetRunStatus(_ context.Context, threadID, runID string) (json.RawMessage, error) {
	return deprecated("GetRunStatus")
}

// Deprecated: use GetConversation.
func (c *ResponseClient) GetThreadMessages(_ context.Context, threadID string, limit int) (json.RawMessage, error) {
	return deprecated("GetThreadMessages")
}

// Deprecated: assistants are managed locally, not provider-side.
func (c *ResponseClient) ListAssistants(context.Context) (json.RawMessage, error) {
	return deprecated("ListAssistants")
}

// Deprecated: assistants are managed locally, not provider-side.
func (c *ResponseClient) UpdateAssistant(_ context.Context, assistantID string) (json.RawMessage, error) {
	return deprecated("UpdateAssistant")
}

// Deprecated: assistants are managed locally, not provider-side.
func (c *ResponseClient) DeleteAssistant(_ context.Context, assistantID string) error {
	_, err := deprecated("DeleteAssistant")
	return err
}

func deprecated(op string) (json.RawMessage, error) {
	slog.Warn("deprecated assistants API call", "op", op)
	return nil, ErrAssistantsAPI
}
