package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duhsoft/aigateway/internal/config"
)

func newTestResponseClient(t *testing.T, handler http.Handler) *ResponseClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewResponseClient(config.AIConfig{
		OpenAIKey:     "test-key",
		OpenAIBaseURL: srv.URL,
		DefaultModel:  "gpt-4o-mini",
	})
}

func TestCreateResponsePrimary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/responses", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.Equal(t, "conv_123", body["conversation"])

		json.NewEncoder(w).Encode(map[string]any{"output_text": "primary answer"})
	})

	c := newTestResponseClient(t, mux)
	res, err := c.CreateResponse(context.Background(), ResponseRequest{
		Input:          "question",
		ConversationID: "conv_123",
	})
	require.NoError(t, err)
	assert.Equal(t, "primary answer", res.Text)
	assert.NotEmpty(t, res.Raw)
}

func TestCreateResponseNestedOutput(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/responses", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"output": []map[string]any{
				{"content": []map[string]any{{"text": "nested answer"}}},
			},
		})
	})

	c := newTestResponseClient(t, mux)
	res, err := c.CreateResponse(context.Background(), ResponseRequest{Input: "question"})
	require.NoError(t, err)
	assert.Equal(t, "nested answer", res.Text)
}

func TestCreateResponseFallsBackToChat(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/responses", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"responses unavailable"}`, http.StatusInternalServerError)
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "fallback answer"}, "finish_reason": "stop"},
			},
		})
	})

	c := newTestResponseClient(t, mux)
	res, err := c.CreateResponse(context.Background(), ResponseRequest{Input: "question"})
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", res.Text)
}

func TestCreateResponseFallbackFailurePropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"everything is down"}`, http.StatusInternalServerError)
	})

	c := newTestResponseClient(t, mux)
	_, err := c.CreateResponse(context.Background(), ResponseRequest{Input: "question"})
	require.Error(t, err)

	var pe *ProviderError
	assert.ErrorAs(t, err, &pe)
}

func TestExtractResponseText(t *testing.T) {
	assert.Equal(t, "a", extractResponseText(json.RawMessage(`{"output_text":"a"}`)))
	assert.Equal(t, "b", extractResponseText(json.RawMessage(`{"output":[{"content":[{"text":"b"}]}]}`)))
	assert.Equal(t, "", extractResponseText(json.RawMessage(`{"output":[]}`)))
	assert.Equal(t, "", extractResponseText(json.RawMessage(`not json`)))
}

func TestCreateConversationDefaults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "conv_9", "created": 1700000000})
	})

	c := newTestResponseClient(t, mux)
	conv, err := c.CreateConversation(context.Background(), "My chat")
	require.NoError(t, err)
	assert.Equal(t, "conv_9", conv.ID)
	assert.Equal(t, "My chat", conv.Title)
	assert.Equal(t, "active", conv.Status)
}

func TestListConversationsDegradesToEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusBadGateway)
	})

	c := newTestResponseClient(t, mux)
	assert.Nil(t, c.ListConversations(context.Background(), 20, ""))
}

func TestDeleteConversationPropagatesFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/conversations/conv_1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		http.Error(w, `{"error":"nope"}`, http.StatusNotFound)
	})

	c := newTestResponseClient(t, mux)
	err := c.DeleteConversation(context.Background(), "conv_1")
	require.Error(t, err)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusNotFound, pe.Status)
}

func TestAssistantsAPIRefused(t *testing.T) {
	c := newTestResponseClient(t, http.NewServeMux())

	_, err := c.CreateThread(context.Background())
	assert.ErrorIs(t, err, ErrAssistantsAPI)

	_, err = c.RunAssistant(context.Background(), "thread_1", "asst_1")
	assert.ErrorIs(t, err, ErrAssistantsAPI)

	assert.ErrorIs(t, c.DeleteAssistant(context.Background(), "asst_1"), ErrAssistantsAPI)
}

func TestListFineTuningJobsDegradesToEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fine_tuning/jobs", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})

	c := newTestResponseClient(t, mux)
	assert.Nil(t, c.ListFineTuningJobs(context.Background(), 20, ""))
}

func TestCreateFineTuningJob(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fine_tuning/jobs", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "file-abc", body["training_file"])

		json.NewEncoder(w).Encode(map[string]any{
			"id":     "ftjob-1",
			"model":  "gpt-4o-mini",
			"status": "queued",
		})
	})

	c := newTestResponseClient(t, mux)
	job, err := c.CreateFineTuningJob(context.Background(), FineTuneRequest{
		TrainingFileID: "file-abc",
		Model:          "gpt-4o-mini",
	})
	require.NoError(t, err)
	assert.Equal(t, "ftjob-1", job.ID)
	assert.Equal(t, "queued", job.Status)
}
