package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalid         = errors.New("invalid configuration")
)

type Config struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// Server
	ServerPort     int    `envconfig:"SERVER_PORT" default:"8081"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	AdminToken     string `envconfig:"ADMIN_TOKEN"`

	// Models
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	EmbeddingDim    int    `envconfig:"EMBEDDING_DIM" default:"768"`
	CompletionModel string `envconfig:"COMPLETION_MODEL" default:"gemini-1.5-flash"`

	// Pipeline
	ChunkSize       int     `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap    int     `envconfig:"CHUNK_OVERLAP" default:"200"`
	TopK            int     `envconfig:"TOP_K_RESULTS" default:"3"`
	MaxTokens       int     `envconfig:"MAX_TOKENS" default:"500"`
	Temperature     float32 `envconfig:"TEMPERATURE" default:"0.7"`
	MinScore        float64 `envconfig:"MIN_SCORE" default:"0"`
	MaxContextChars int     `envconfig:"MAX_CONTEXT_CHARS" default:"12000"`
	EmbedBatchSize  int     `envconfig:"EMBED_BATCH_SIZE" default:"100"`
	UpsertBatchSize int     `envconfig:"UPSERT_BATCH_SIZE" default:"100"`

	// Resilience
	RetryAttempts  int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"RETRY_BASE_DELAY" default:"200ms"`
	CallTimeout    time.Duration `envconfig:"CALL_TIMEOUT" default:"20s"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`

	BootstrapRetryAttempts int           `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelay    time.Duration `envconfig:"BOOTSTRAP_RETRY_DELAY" default:"2s"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell; a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive", ErrInvalid)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be in [0, CHUNK_SIZE)", ErrInvalid)
	}
	if c.TopK < 1 || c.TopK > 10 {
		return fmt.Errorf("%w: TOP_K_RESULTS must be in [1, 10]", ErrInvalid)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("%w: EMBEDDING_DIM must be positive", ErrInvalid)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: TEMPERATURE must be in [0, 2]", ErrInvalid)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: MAX_TOKENS must be positive", ErrInvalid)
	}
	if c.EmbedBatchSize <= 0 || c.UpsertBatchSize <= 0 {
		return fmt.Errorf("%w: batch sizes must be positive", ErrInvalid)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("%w: RETRY_ATTEMPTS must be at least 1", ErrInvalid)
	}
	return nil
}
