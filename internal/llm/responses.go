package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/duhsoft/aigateway/internal/config"
)

const (
	restTimeout     = 30 * time.Second
	responseTimeout = 45 * time.Second
	uploadTimeout   = 60 * time.Second

	fallbackMaxTokens   = 4000
	fallbackTemperature = 0.7
)

// ResponseClient drives the OpenAI Responses/Conversations protocol over
// REST, with a chat-completion degrade path, plus the fine-tuning and file
// management endpoints the training workflow needs.
type ResponseClient struct {
	baseURL      string
	apiKey       string
	defaultModel string
	rest         *http.Client
	chat         *openai.Client
}

func NewResponseClient(cfg config.AIConfig) *ResponseClient {
	chatCfg := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		chatCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &ResponseClient{
		baseURL:      cfg.OpenAIBaseURL,
		apiKey:       cfg.OpenAIKey,
		defaultModel: cfg.DefaultModel,
		rest:         &http.Client{},
		chat:         openai.NewClientWithConfig(chatCfg),
	}
}

type ResponseRequest struct {
	Input          string `json:"input"`
	Model          string `json:"model,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
}

// ResponseResult always carries a text field, possibly empty, plus the raw
// provider payload for callers that need more than the short text.
type ResponseResult struct {
	Text string          `json:"text"`
	Raw  json.RawMessage `json:"raw"`
}

// CreateResponse runs the two-step pipeline: try the Responses endpoint,
// and on any failure degrade to a single-message chat completion with the
// same input and model. The fallback is deliberate and logged, not an error;
// only a failure of the fallback itself propagates.
func (c *ResponseClient) CreateResponse(ctx context.Context, req ResponseRequest) (*ResponseResult, error) {
	if req.Model == "" {
		req.Model = c.defaultModel
	}

	res, err := c.createPrimary(ctx, req)
	if err == nil {
		return res, nil
	}

	slog.Warn("responses API failed, falling back to chat completions", "error", err)
	return c.fallbackChat(ctx, req)
}

func (c *ResponseClient) createPrimary(ctx context.Context, req ResponseRequest) (*ResponseResult, error) {
	payload := map[string]any{
		"model": req.Model,
		"input": req.Input,
	}
	if req.Instructions != "" {
		payload["instructions"] = req.Instructions
	}
	if req.ConversationID != "" {
		payload["conversation"] = req.ConversationID
	}

	raw, err := c.do(ctx, http.MethodPost, "/responses", nil, payload, responseTimeout)
	if err != nil {
		return nil, err
	}

	return &ResponseResult{Text: extractResponseText(raw), Raw: raw}, nil
}

// extractResponseText prefers the top-level output_text field and otherwise
// walks output[0].content[0].text. Missing fields yield an empty string.
func extractResponseText(raw json.RawMessage) string {
	var body struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.OutputText != "" {
		return body.OutputText
	}
	if len(body.Output) > 0 && len(body.Output[0].Content) > 0 {
		return body.Output[0].Content[0].Text
	}
	return ""
}

func (c *ResponseClient) fallbackChat(ctx context.Context, req ResponseRequest) (*ResponseResult, error) {
	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Input},
		},
		MaxTokens:   fallbackMaxTokens,
		Temperature: fallbackTemperature,
	})
	if err != nil {
		return nil, &ProviderError{Provider: "openai", Err: fmt.Errorf("chat completion fallback: %w", err)}
	}

	text := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}

	raw, _ := json.Marshal(resp)
	return &ResponseResult{Text: text, Raw: raw}, nil
}

// do issues a single REST call against the provider API and returns the raw
// body. Non-2xx statuses and transport failures become ProviderErrors; there
// is no retry.
func (c *ResponseClient) do(ctx context.Context, method, path string, query url.Values, payload any, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

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
			Err:      fmt.Errorf("%s %s: %s", method, path, string(data)),
		}
	}

	return data, nil
}
