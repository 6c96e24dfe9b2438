package chunker

import (
	"strings"
)

// Chunk is a bounded-length slice of a document's extracted text.
type Chunk struct {
	Content string
	Index   int
}

const DefaultBudget = 2000

// Split chunks text by greedy sentence accumulation: sentences (". "
// boundaries) are appended to the current chunk until the next one would
// push it over the budget, then the chunk is flushed. A sentence is never
// split across chunks, even when it alone exceeds the budget. Indices are
// zero-based and contiguous.
func Split(text string, budget int) []Chunk {
	if budget <= 0 {
		budget = DefaultBudget
	}

	sentences := strings.Split(text, ". ")

	var chunks []Chunk
	var current strings.Builder

	flush := func() {
		content := strings.TrimSpace(current.String())
		if content != "" {
			chunks = append(chunks, Chunk{Content: content, Index: len(chunks)})
		}
		current.Reset()
	}

	for _, sentence := range sentences {
		if strings.TrimSpace(sentence) == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(sentence) >= budget {
			flush()
		}
		current.WriteString(sentence)
		if !strings.HasSuffix(sentence, ".") {
			current.WriteString(". ")
		} else {
			current.WriteString(" ")
		}
	}
	flush()

	return chunks
}
