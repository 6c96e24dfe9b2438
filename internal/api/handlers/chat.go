package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/duhsoft/aigateway/internal/llm"
	"github.com/duhsoft/aigateway/internal/training"
)

// defaultMaxTokens bounds a completion when the caller does not say; it also
// sets the retrieval word budget for assistant-scoped requests.
const defaultMaxTokens = 1000

type ChatHandler struct {
	gateway   *llm.Gateway
	responses *llm.ResponseClient
	retriever *training.Retriever
}

func NewChatHandler(gw *llm.Gateway, rc *llm.ResponseClient, retriever *training.Retriever) *ChatHandler {
	return &ChatHandler{gateway: gw, responses: rc, retriever: retriever}
}

type completionRequest struct {
	Prompt       string  `json:"prompt"`
	Model        string  `json:"model,omitempty"`
	Instructions string  `json:"instructions,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	AssistantID  string  `json:"assistant_id,omitempty"`
}

// Complete runs a one-shot completion through the configured provider. When
// an assistant_id is given, retrieved document context is prepended to the
// instructions; retrieval failures silently degrade to no context.
func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt required"})
		return
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}

	instructions := req.Instructions
	if req.AssistantID != "" {
		assistantID, err := uuid.Parse(req.AssistantID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid assistant_id"})
			return
		}
		if docCtx := h.retriever.GetContext(r.Context(), assistantID, req.Prompt, req.MaxTokens); docCtx != "" {
			instructions = joinInstructions(docCtx, instructions)
		}
	}

	result, err := h.gateway.Complete(r.Context(), llm.CompletionRequest{
		Prompt:       req.Prompt,
		Model:        req.Model,
		Instructions: instructions,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func joinInstructions(docCtx, instructions string) string {
	header := "Use the following context to answer:\n\n" + docCtx
	if instructions == "" {
		return header
	}
	return header + "\n\n" + instructions
}

// CreateResponse proxies to the provider's Responses endpoint with the
// chat-completion degrade path.
func (h *ChatHandler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	var req llm.ResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Input == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "input required"})
		return
	}

	result, err := h.responses.CreateResponse(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ChatHandler) Embed(w http.ResponseWriter, r *http.Request) {
	var req llm.EmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Input) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "input required"})
		return
	}

	resp, err := h.gateway.Embed(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": h.gateway.ListModels()})
}
