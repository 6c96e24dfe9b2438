package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/duhsoft/aigateway/internal/finetune"
	"github.com/duhsoft/aigateway/internal/llm"
	"github.com/duhsoft/aigateway/internal/models"
)

type FinetuneHandler struct {
	svc    *finetune.Service
	client *llm.ResponseClient
}

func NewFinetuneHandler(svc *finetune.Service, rc *llm.ResponseClient) *FinetuneHandler {
	return &FinetuneHandler{svc: svc, client: rc}
}

// StartJob takes a multipart form: `file` (JSONL dataset), `assistant_id`,
// `base_model`, optional `hyperparameters` (JSON object).
func (h *FinetuneHandler) StartJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dataset file required"})
		return
	}
	defer file.Close()

	assistantID, err := uuid.Parse(r.FormValue("assistant_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid assistant_id"})
		return
	}

	baseModel := r.FormValue("base_model")
	if baseModel == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "base_model required"})
		return
	}

	var hyperparams json.RawMessage
	if hp := r.FormValue("hyperparameters"); hp != "" {
		if !json.Valid([]byte(hp)) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hyperparameters JSON"})
			return
		}
		hyperparams = json.RawMessage(hp)
	}

	job, err := h.svc.StartJob(r.Context(), assistantID, baseModel, header.Filename, file, hyperparams)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (h *FinetuneHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid job ID"})
		return
	}

	job, err := h.svc.GetJob(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *FinetuneHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	assistantID, err := uuid.Parse(r.URL.Query().Get("assistant_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "assistant_id required"})
		return
	}

	jobs, err := h.svc.ListJobs(r.Context(), assistantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []models.FineTuningJob{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs, "count": len(jobs)})
}

func (h *FinetuneHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid job ID"})
		return
	}

	job, err := h.svc.CancelJob(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ListProviderJobs reads straight from the provider, degrading to an empty
// list on failure.
func (h *FinetuneHandler) ListProviderJobs(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	items := h.client.ListFineTuningJobs(r.Context(), limit, r.URL.Query().Get("after"))
	if items == nil {
		items = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": items})
}

func (h *FinetuneHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	items := h.client.ListFiles(r.Context())
	if items == nil {
		items = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": items})
}

func (h *FinetuneHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.client.DeleteFile(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
