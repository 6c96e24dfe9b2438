package llm

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// DemoProvider simulates completions without any external calls. It is the
// default backend until a real provider is configured, so replies keep a
// helpful "configure a provider" tone.
type DemoProvider struct {
	embeddingDim int
	minDelay     time.Duration
	maxDelay     time.Duration
}

func NewDemoProvider(embeddingDim int) *DemoProvider {
	return &DemoProvider{
		embeddingDim: embeddingDim,
		minDelay:     500 * time.Millisecond,
		maxDelay:     1500 * time.Millisecond,
	}
}

func (p *DemoProvider) Name() string { return "demo" }

func (p *DemoProvider) Models() []string {
	return []string{"demo-gpt-4o-mini"}
}

const demoModel = "demo-gpt-4o-mini"

// cannedReplies is matched in order against the lowercased prompt; the first
// pattern contained in the prompt wins.
var cannedReplies = []struct {
	pattern string
	reply   string
}{
	{"hello", "Hello! I am the demo assistant of the AI Gateway. In production a real AI reply would appear here. Ask me anything!"},
	{"help", "This is the demo mode of the AI Gateway. Configure an AI provider in the settings for real AI functionality. I can still answer your questions!"},
	{"hr", "As the HR assistant I can help with people-management questions. In demo mode my answers are generic; configure a real AI provider for specific advice."},
	{"it", "As the IT support assistant I can help with technical problems. In demo mode my answers are generic; enable a real AI provider for detailed support."},
	{"business", "As the business assistant I can help with strategic questions. In demo mode I give general business guidance; configure a real AI provider for specific analysis."},
	{"marketing", "As the marketing assistant I can help with strategies and campaigns. In demo mode my answers are generic; enable a real AI provider for detailed advice."},
	{"finance", "As the finance assistant I can help with financial questions. In demo mode I give general guidance; configure a real AI provider for specific analysis."},
	{"legal", "As the legal assistant I can help with legal questions. In demo mode my answers are generic; configure a real AI provider for specific advice."},
	{"sales", "As the sales assistant I can help with sales strategies and customer relationships. In demo mode I give general guidance; configure a real AI provider for detailed support."},
	{"customer", "As the customer service assistant I can help with customer questions and support. In demo mode my answers are generic; enable a real AI provider for specific service."},
}

func (p *DemoProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	// Simulated typing latency.
	if err := p.sleep(ctx); err != nil {
		return nil, err
	}

	promptTokens := len(strings.Fields(req.Prompt))
	lower := strings.ToLower(req.Prompt)

	for _, c := range cannedReplies {
		if strings.Contains(lower, c.pattern) {
			completionTokens := len(strings.Fields(c.reply))
			return &CompletionResult{
				Content: c.reply,
				Model:   demoModel,
				Usage: Usage{
					PromptTokens:     promptTokens,
					CompletionTokens: completionTokens,
					TotalTokens:      promptTokens + completionTokens,
				},
				FinishReason: FinishStop,
			}, nil
		}
	}

	templates := []string{
		"[Demo mode] Your request '%s' would be forwarded to the configured AI. This is a simulated reply.",
		"In demo mode I understand your question '%s', but for a real AI answer please configure an AI provider in the settings.",
		"Demo reply: I understand your request '%s'. Enable a real AI provider for detailed answers.",
		"As the demo assistant I can process your question '%s'. Configure an AI provider for specific answers.",
		"Demo mode: your request '%s' is being simulated. Configure a provider for real AI functionality.",
	}
	cutoffs := []int{50, 30, 40, 35, 45}

	i := rand.Intn(len(templates))
	content := fmt.Sprintf(templates[i], truncateEcho(req.Prompt, cutoffs[i]))

	return &CompletionResult{
		Content: content,
		Model:   demoModel,
		Usage: Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: 25,
			TotalTokens:      promptTokens + 25,
		},
		FinishReason: FinishStop,
	}, nil
}

// Embed produces deterministic pseudo-embeddings so that demo-mode retrieval
// behaves consistently: the same text always maps to the same vector.
func (p *DemoProvider) Embed(_ context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	dim := p.embeddingDim
	if dim <= 0 {
		dim = 768
	}

	embeddings := make([][]float32, len(req.Input))
	tokens := 0
	for i, text := range req.Input {
		embeddings[i] = hashEmbedding(text, dim)
		tokens += len(strings.Fields(text))
	}

	return &EmbeddingResponse{
		Model:      demoModel,
		Embeddings: embeddings,
		Tokens:     tokens,
	}, nil
}

// hashEmbedding folds word-level FNV hashes into a fixed-size vector. Texts
// sharing vocabulary land near each other, which is enough for demo-mode
// cosine ranking to prefer chunks that share words with the query.
func hashEmbedding(text string, dim int) []float32 {
	vec := make([]float32, dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var h uint32 = 2166136261
		for i := 0; i < len(word); i++ {
			h ^= uint32(word[i])
			h *= 16777619
		}
		vec[h%uint32(dim)] += 1
	}
	return vec
}

func (p *DemoProvider) sleep(ctx context.Context) error {
	if p.maxDelay <= 0 {
		return nil
	}
	d := p.minDelay
	if p.maxDelay > p.minDelay {
		d += time.Duration(rand.Int63n(int64(p.maxDelay - p.minDelay)))
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func truncateEcho(prompt string, n int) string {
	runes := []rune(prompt)
	if len(runes) <= n {
		return prompt
	}
	return string(runes[:n]) + "..."
}
