package workers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkMetadata(t *testing.T) {
	content := "The quick brown fox jumps over the lazy dog."

	var meta struct {
		ChunkSize  int `json:"chunk_size"`
		TokenCount int `json:"token_count"`
	}
	require.NoError(t, json.Unmarshal(chunkMetadata(content), &meta))

	assert.Equal(t, len(content), meta.ChunkSize)
	assert.Greater(t, meta.TokenCount, 0)
	assert.LessOrEqual(t, meta.TokenCount, len(content))
}
