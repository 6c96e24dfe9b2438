package finetune

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/duhsoft/aigateway/pkg/tokenizer"
)

// TrainingExample is one chat-format record of a JSONL dataset.
type TrainingExample struct {
	Messages []TrainingMessage `json:"messages"`
}

type TrainingMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const maxLineBytes = 1024 * 1024

// DatasetStats summarizes a validated dataset. Tokens is a cl100k_base
// count over all message contents, used for cost estimation before upload.
type DatasetStats struct {
	Examples int `json:"examples"`
	Tokens   int `json:"tokens"`
}

// ValidateJSONL checks that every non-blank line is a chat example the
// provider will accept. Validation happens before the file is uploaded, so a
// broken dataset never reaches the provider's billing meter.
func ValidateJSONL(r io.Reader) (*DatasetStats, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineBytes), maxLineBytes)

	var stats DatasetStats
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var example TrainingExample
		if err := json.Unmarshal([]byte(line), &example); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", stats.Examples+1, err)
		}
		if err := validateExample(example); err != nil {
			return nil, fmt.Errorf("line %d: %w", stats.Examples+1, err)
		}

		for _, m := range example.Messages {
			stats.Tokens += tokenizer.CountTokens(m.Content)
		}
		stats.Examples++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan dataset: %w", err)
	}
	if stats.Examples == 0 {
		return nil, fmt.Errorf("empty dataset")
	}
	return &stats, nil
}

func validateExample(ex TrainingExample) error {
	if len(ex.Messages) < 2 {
		return fmt.Errorf("need at least a user and an assistant message")
	}

	var hasUser, hasAssistant bool
	for _, m := range ex.Messages {
		switch m.Role {
		case "system":
		case "user":
			hasUser = true
		case "assistant":
			hasAssistant = true
		default:
			return fmt.Errorf("invalid role %q", m.Role)
		}
		if m.Content == "" {
			return fmt.Errorf("empty content for role %s", m.Role)
		}
	}

	if !hasUser || !hasAssistant {
		return fmt.Errorf("need at least one user and one assistant message")
	}
	return nil
}
