package handlers

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/duhsoft/aigateway/internal/llm"
)

// writeServiceError maps service-layer failures onto HTTP statuses:
// missing configuration is the caller's problem (400), upstream provider
// failures are a bad gateway (502), the retired Assistants surface is gone
// for good (410).
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case llm.IsConfigError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, llm.ErrAssistantsAPI):
		writeJSON(w, http.StatusGone, map[string]string{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		var pe *llm.ProviderError
		if errors.As(err, &pe) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
