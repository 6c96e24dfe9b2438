package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.AI.Provider)
	assert.Equal(t, "https://api.openai.com/v1", cfg.AI.OpenAIBaseURL)
	assert.Equal(t, 768, cfg.AI.EmbeddingDim)
	assert.Equal(t, 2000, cfg.Uploads.ChunkSize)
	assert.Equal(t, 10, cfg.Uploads.MaxChunks)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", "ollama")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TRAINING_CHUNK_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.AI.Provider)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Uploads.ChunkSize)
}

func TestLoadBadInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateMissingRequired(t *testing.T) {
	cfg := &Config{}
	cfg.AI.Provider = "demo"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidateBadProvider(t *testing.T) {
	cfg := &Config{}
	cfg.Database.URL = "postgres://localhost/db"
	cfg.Auth.JWTSecret = "secret"
	cfg.AI.Provider = "bard"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported AI provider")
}

func TestValidateOK(t *testing.T) {
	cfg := &Config{}
	cfg.Database.URL = "postgres://localhost/db"
	cfg.Auth.JWTSecret = "secret"
	cfg.AI.Provider = "anthropic"

	assert.NoError(t, cfg.Validate())
}
