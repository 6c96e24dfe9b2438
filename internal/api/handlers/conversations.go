package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/duhsoft/aigateway/internal/llm"
)

type ConversationsHandler struct {
	client *llm.ResponseClient
}

func NewConversationsHandler(rc *llm.ResponseClient) *ConversationsHandler {
	return &ConversationsHandler{client: rc}
}

func (h *ConversationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	conv, err := h.client.CreateConversation(r.Context(), req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *ConversationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw, err := h.client.GetConversation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// List never fails: provider trouble shows up as an empty list, matching the
// client's degrade policy for reads.
func (h *ConversationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	items := h.client.ListConversations(r.Context(), limit, r.URL.Query().Get("before"))
	if items == nil {
		items = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": items})
}

func (h *ConversationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.client.DeleteConversation(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
