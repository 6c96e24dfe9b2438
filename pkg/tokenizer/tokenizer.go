package tokenizer

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	once  sync.Once
	codec tokenizer.Codec
)

// CountTokens returns the cl100k_base token count for text, falling back to
// a words*4/3 estimate if the codec cannot be loaded.
func CountTokens(text string) int {
	once.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			codec = c
		}
	})

	if codec != nil {
		ids, _, err := codec.Encode(text)
		if err == nil {
			return len(ids)
		}
	}

	return estimate(text)
}

func estimate(text string) int {
	words := strings.Fields(text)
	n := len(words) * 4 / 3
	if n < 1 {
		n = 1
	}
	return n
}
