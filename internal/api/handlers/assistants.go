package handlers

import (
	"net/http"

	"github.com/duhsoft/aigateway/internal/llm"
)

// AssistantsHandler covers the retired provider-side Assistants routes.
// Every endpoint answers 410 Gone; the routes stay registered so old clients
// get a clear refusal instead of a generic 404.
type AssistantsHandler struct {
	client *llm.ResponseClient
}

func NewAssistantsHandler(rc *llm.ResponseClient) *AssistantsHandler {
	return &AssistantsHandler{client: rc}
}

func (h *AssistantsHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	_, err := h.client.CreateThread(r.Context())
	writeServiceError(w, err)
}

func (h *AssistantsHandler) ListProviderAssistants(w http.ResponseWriter, r *http.Request) {
	_, err := h.client.ListAssistants(r.Context())
	writeServiceError(w, err)
}
