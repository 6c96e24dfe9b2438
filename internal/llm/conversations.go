package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// Conversation is owned by the remote provider; the gateway only keeps the
// opaque id as a reference.
type Conversation struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Created int64  `json:"created"`
	Status  string `json:"status"`
}

func (c *ResponseClient) CreateConversation(ctx context.Context, title string) (*Conversation, error) {
	payload := map[string]any{}
	if title != "" {
		payload["title"] = title
	}

	raw, err := c.do(ctx, http.MethodPost, "/conversations", nil, payload, restTimeout)
	if err != nil {
		return nil, err
	}

	var conv Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, &ProviderError{Provider: "openai", Err: err}
	}
	if conv.Title == "" {
		conv.Title = title
	}
	conv.Status = "active"
	return &conv, nil
}

func (c *ResponseClient) GetConversation(ctx context.Context, conversationID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/conversations/"+conversationID, nil, nil, restTimeout)
}

// ListConversations is a best-effort read: a failed call degrades to an
// empty list instead of an error.
func (c *ResponseClient) ListConversations(ctx context.Context, limit int, before string) []json.RawMessage {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if before != "" {
		query.Set("before", before)
	}

	raw, err := c.do(ctx, http.MethodGet, "/conversations", query, nil, restTimeout)
	if err != nil {
		slog.Warn("list conversations failed", "error", err)
		return nil
	}

	return decodeDataList(raw)
}

func (c *ResponseClient) DeleteConversation(ctx context.Context, conversationID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/conversations/"+conversationID, nil, nil, restTimeout)
	return err
}

func decodeDataList(raw json.RawMessage) []json.RawMessage {
	var body struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	return body.Data
}
