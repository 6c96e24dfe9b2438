package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	assert.Greater(t, CountTokens("hello world, this is a sentence"), 0)

	short := CountTokens("hi")
	long := CountTokens("a considerably longer sentence with many more words in it")
	assert.Greater(t, long, short)
}

func TestEstimate(t *testing.T) {
	assert.Equal(t, 1, estimate(""))
	assert.Equal(t, 4, estimate("one two three"))
}
