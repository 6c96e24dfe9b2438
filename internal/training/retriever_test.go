package training

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duhsoft/aigateway/internal/models"
	"github.com/duhsoft/aigateway/internal/vectorstore"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

type fakeVectorStore struct {
	results []vectorstore.SearchResult
	err     error
	gotOpts vectorstore.SearchOptions
}

func (f *fakeVectorStore) InsertChunks(context.Context, []models.DocumentChunk) error { return nil }

func (f *fakeVectorStore) SimilaritySearch(_ context.Context, _ []float32, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error) {
	f.gotOpts = opts
	return f.results, f.err
}

func (f *fakeVectorStore) DeleteByDocument(context.Context, uuid.UUID) error { return nil }

func (f *fakeVectorStore) CountByAssistant(context.Context, uuid.UUID) (int, error) {
	return len(f.results), nil
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestGetContextJoinsChunks(t *testing.T) {
	store := &fakeVectorStore{results: []vectorstore.SearchResult{
		{Content: words(10), Score: 0.9},
		{Content: words(10), Score: 0.8},
	}}

	r := NewRetriever(&fakeEmbedder{}, store, 10)
	got := r.GetContext(context.Background(), uuid.New(), "query", 400)

	parts := strings.Split(got, "\n\n")
	require.Len(t, parts, 2)
	assert.Equal(t, 10, len(strings.Fields(parts[0])))
	assert.Equal(t, 10, store.gotOpts.TopK)
}

func TestGetContextStopsAtWordBudget(t *testing.T) {
	store := &fakeVectorStore{results: []vectorstore.SearchResult{
		{Content: words(20), Score: 0.9},
		{Content: words(90), Score: 0.8}, // would blow the budget
		{Content: words(5), Score: 0.7},  // would fit, but assembly stopped
	}}

	r := NewRetriever(&fakeEmbedder{}, store, 10)
	// Budget is maxTokens/4 = 100 words.
	got := r.GetContext(context.Background(), uuid.New(), "query", 400)

	assert.Equal(t, 20, len(strings.Fields(got)))
}

func TestGetContextEmptyQuery(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeVectorStore{}, 10)
	assert.Empty(t, r.GetContext(context.Background(), uuid.New(), "   ", 400))
}

func TestGetContextDegradesOnSearchError(t *testing.T) {
	store := &fakeVectorStore{err: errors.New("db down")}

	r := NewRetriever(&fakeEmbedder{}, store, 10)
	assert.Empty(t, r.GetContext(context.Background(), uuid.New(), "query", 400))
}

func TestGetContextDegradesOnEmbedError(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{err: errors.New("no provider")}, &fakeVectorStore{}, 10)
	assert.Empty(t, r.GetContext(context.Background(), uuid.New(), "query", 400))
}

func TestGetContextNoResults(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeVectorStore{}, 10)
	assert.Empty(t, r.GetContext(context.Background(), uuid.New(), "query", 400))
}

func TestNewRetrieverDefaultsMaxChunks(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeVectorStore{}, 0)
	assert.Equal(t, 10, r.maxChunks)
}
