package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/duhsoft/aigateway/internal/models"
	"github.com/duhsoft/aigateway/internal/training"
)

type TrainingHandler struct {
	svc       *training.Service
	retriever *training.Retriever
	maxUpload int64
}

func NewTrainingHandler(svc *training.Service, retriever *training.Retriever, maxUpload int64) *TrainingHandler {
	return &TrainingHandler{svc: svc, retriever: retriever, maxUpload: maxUpload}
}

// Upload accepts one or more files in the `files` multipart field and
// returns the documents that were accepted. A file that fails to persist is
// dropped from the response, not an error: 200 with a partial list.
func (h *TrainingHandler) Upload(w http.ResponseWriter, r *http.Request) {
	assistantID, ok := h.assistantID(w, r)
	if !ok {
		return
	}

	// MaxBytesReader enforces the limit on the whole request body;
	// ParseMultipartForm alone only bounds in-memory buffering and would
	// happily spool an oversized upload to disk.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload exceeds size limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one file required"})
		return
	}

	var uploads []training.Upload
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			continue
		}
		defer f.Close()
		uploads = append(uploads, training.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        f,
		})
	}

	docs := h.svc.Ingest(r.Context(), assistantID, uploads)
	if docs == nil {
		docs = []models.TrainingDocument{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "accepted": len(docs)})
}

func (h *TrainingHandler) List(w http.ResponseWriter, r *http.Request) {
	assistantID, ok := h.assistantID(w, r)
	if !ok {
		return
	}

	docs, err := h.svc.ListDocuments(r.Context(), assistantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if docs == nil {
		docs = []models.TrainingDocument{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "count": len(docs)})
}

func (h *TrainingHandler) Get(w http.ResponseWriter, r *http.Request) {
	docID, err := uuid.Parse(chi.URLParam(r, "docID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	doc, err := h.svc.GetDocument(r.Context(), docID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *TrainingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	docID, err := uuid.Parse(chi.URLParam(r, "docID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	if err := h.svc.DeleteDocument(r.Context(), docID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

func (h *TrainingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	assistantID, ok := h.assistantID(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(r.Context(), assistantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Context exposes retrieval directly, mostly for debugging what a completion
// would see. An empty context is a normal answer here.
func (h *TrainingHandler) Context(w http.ResponseWriter, r *http.Request) {
	assistantID, ok := h.assistantID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query required"})
		return
	}

	maxTokens := defaultMaxTokens
	if v := r.URL.Query().Get("max_tokens"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxTokens = n
		}
	}

	docCtx := h.retriever.GetContext(r.Context(), assistantID, query, maxTokens)
	writeJSON(w, http.StatusOK, map[string]string{"context": docCtx})
}

func (h *TrainingHandler) assistantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "assistantID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid assistant ID"})
		return uuid.Nil, false
	}
	return id, true
}
