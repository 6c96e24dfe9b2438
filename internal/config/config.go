package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	AI       AIConfig
	Uploads  UploadConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
}

// AIConfig selects the completion backend and carries its credentials.
// Provider must be one of: demo, openai, anthropic, ollama.
type AIConfig struct {
	Provider      string
	OpenAIKey     string
	OpenAIBaseURL string
	AnthropicKey  string
	OllamaURL     string
	DefaultModel  string

	// Embedding model and dimensionality must stay consistent for all
	// chunks of an assistant; changing them requires re-ingestion.
	EmbeddingModel string
	EmbeddingDim   int
}

type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
	ChunkSize    int
	MaxChunks    int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	embeddingDim, err := getEnvInt("AI_EMBEDDING_DIM", 768)
	if err != nil {
		return nil, fmt.Errorf("invalid AI_EMBEDDING_DIM: %w", err)
	}

	maxUpload, err := getEnvInt("UPLOAD_MAX_SIZE_BYTES", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_SIZE_BYTES: %w", err)
	}

	chunkSize, err := getEnvInt("TRAINING_CHUNK_SIZE", 2000)
	if err != nil {
		return nil, fmt.Errorf("invalid TRAINING_CHUNK_SIZE: %w", err)
	}

	maxChunks, err := getEnvInt("TRAINING_MAX_CHUNKS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid TRAINING_MAX_CHUNKS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		AI: AIConfig{
			Provider:       getEnv("AI_PROVIDER", "demo"),
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			DefaultModel:   getEnv("AI_DEFAULT_MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("AI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDim:   embeddingDim,
		},
		Uploads: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "uploads"),
			MaxSizeBytes: int64(maxUpload),
			ChunkSize:    chunkSize,
			MaxChunks:    maxChunks,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	switch c.AI.Provider {
	case "demo", "openai", "anthropic", "ollama":
	default:
		return fmt.Errorf("unsupported AI provider: %s", c.AI.Provider)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
