package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDemoProvider(dim int) *DemoProvider {
	// Zero delays so tests do not sleep.
	return &DemoProvider{embeddingDim: dim}
}

func TestDemoProviderCannedReply(t *testing.T) {
	p := newTestDemoProvider(8)

	res, err := p.Complete(context.Background(), CompletionRequest{Prompt: "Hello there, who are you?"})
	require.NoError(t, err)

	assert.Contains(t, res.Content, "demo assistant")
	assert.Equal(t, "demo-gpt-4o-mini", res.Model)
	assert.Equal(t, FinishStop, res.FinishReason)

	// Whitespace token accounting.
	assert.Equal(t, 5, res.Usage.PromptTokens)
	assert.Equal(t, len(strings.Fields(res.Content)), res.Usage.CompletionTokens)
	assert.Equal(t, res.Usage.PromptTokens+res.Usage.CompletionTokens, res.Usage.TotalTokens)
}

func TestDemoProviderCannedReplyOrder(t *testing.T) {
	p := newTestDemoProvider(8)

	// "hello" appears before "help" in the reply table, so a prompt
	// containing both gets the hello reply.
	res, err := p.Complete(context.Background(), CompletionRequest{Prompt: "hello, I need help"})
	require.NoError(t, err)
	assert.Contains(t, res.Content, "Ask me anything!")
}

func TestDemoProviderTemplatedFallback(t *testing.T) {
	p := newTestDemoProvider(8)
	prompt := "completely unmatched topic xyzzy quux"

	res, err := p.Complete(context.Background(), CompletionRequest{Prompt: prompt})
	require.NoError(t, err)

	assert.Contains(t, res.Content, prompt)
	assert.Equal(t, 25, res.Usage.CompletionTokens)
	assert.Equal(t, len(strings.Fields(prompt)), res.Usage.PromptTokens)
}

func TestDemoProviderFallbackTruncatesLongPrompts(t *testing.T) {
	p := newTestDemoProvider(8)
	prompt := strings.Repeat("x", 200)

	res, err := p.Complete(context.Background(), CompletionRequest{Prompt: prompt})
	require.NoError(t, err)

	assert.NotContains(t, res.Content, prompt)
	assert.Contains(t, res.Content, "...")
}

func TestDemoProviderCancelledContext(t *testing.T) {
	p := NewDemoProvider(8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Complete(ctx, CompletionRequest{Prompt: "hello"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDemoProviderEmbedDeterministic(t *testing.T) {
	p := newTestDemoProvider(16)

	resp, err := p.Embed(context.Background(), EmbeddingRequest{Input: []string{"alpha beta", "alpha beta", "gamma"}})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 3)

	for _, e := range resp.Embeddings {
		assert.Len(t, e, 16)
	}
	assert.Equal(t, resp.Embeddings[0], resp.Embeddings[1])
	assert.NotEqual(t, resp.Embeddings[0], resp.Embeddings[2])
	assert.Equal(t, 5, resp.Tokens)
}

func TestTruncateEcho(t *testing.T) {
	assert.Equal(t, "short", truncateEcho("short", 30))
	assert.Equal(t, "abcde...", truncateEcho("abcdefgh", 5))

	// Rune-safe truncation.
	got := truncateEcho(strings.Repeat("ü", 10), 4)
	assert.Equal(t, "üüüü...", got)
}
