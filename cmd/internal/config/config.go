package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	IndexChromem = "chromem"
	IndexQdrant  = "qdrant"
)

// Config holds all configuration for slotbook.
// Values come from the environment (optionally seeded by a .env file) or from
// a YAML file named by CONFIG_PATH, with environment variables taking precedence.
// Secrets are only read from the environment.
type Config struct {
	Env  string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Port string `yaml:"port" env:"PORT" env-default:"6060"`

	Database   DatabaseConfig   `yaml:"database"`
	Index      IndexConfig      `yaml:"index"`
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Redis      RedisConfig      `yaml:"redis"`
	Suggestion SuggestionConfig `yaml:"suggestion"`
}

// DatabaseConfig selects the relational engine. Path is used by sqlite,
// URL (a DSN) by postgres.
type DatabaseConfig struct {
	Driver       string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	Path         string `yaml:"path" env:"DATABASE_PATH" env-default:"data/appointments.db"`
	URL          string `yaml:"-" env:"DATABASE_URL"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"5"`

	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" env:"DB_SLOW_QUERY_THRESHOLD" env-default:"200ms"`
}

// IndexConfig selects the semantic index backend.
type IndexConfig struct {
	Backend    string `yaml:"backend" env:"INDEX_BACKEND" env-default:"chromem"`
	Path       string `yaml:"path" env:"CHROMA_PATH" env-default:"data/chroma"`
	Compress   bool   `yaml:"compress" env:"CHROMA_COMPRESS" env-default:"false"`
	Dimensions uint64 `yaml:"dimensions" env:"EMBEDDING_DIMENSIONS" env-default:"1536"`

	QdrantHost   string `yaml:"qdrant_host" env:"QDRANT_HOST" env-default:"localhost"`
	QdrantPort   int    `yaml:"qdrant_port" env:"QDRANT_PORT" env-default:"6334"`
	QdrantAPIKey string `yaml:"-" env:"QDRANT_API_KEY"`
	QdrantTLS    bool   `yaml:"qdrant_use_tls" env:"QDRANT_USE_TLS" env-default:"false"`
}

// LLMConfig points at an OpenAI-compatible chat completion endpoint (Groq by default).
type LLMConfig struct {
	BaseURL   string `yaml:"base_url" env:"LLM_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	APIKey    string `yaml:"-" env:"GROQ_API_KEY"`
	Model     string `yaml:"model" env:"LLM_MODEL" env-default:"mixtral-8x7b-32768"`
	MaxTokens int    `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"500"`
}

// EmbeddingConfig points at an OpenAI-compatible embeddings endpoint.
type EmbeddingConfig struct {
	BaseURL string `yaml:"base_url" env:"EMBEDDING_BASE_URL" env-default:"https://api.openai.com/v1"`
	APIKey  string `yaml:"-" env:"EMBEDDING_API_KEY"`
	Model   string `yaml:"model" env:"EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
}

// RedisConfig enables the suggestion cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type SuggestionConfig struct {
	CacheTTL      time.Duration `yaml:"cache_ttl" env:"SUGGESTION_CACHE_TTL" env-default:"1h"`
	RatePerMinute float64       `yaml:"rate_per_minute" env:"SUGGESTION_RATE_PER_MINUTE" env-default:"20"`
	RateBurst     int           `yaml:"rate_burst" env:"SUGGESTION_RATE_BURST" env-default:"5"`
}

// IsProduction reports whether the process runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CacheEnabled reports whether a redis address was configured.
func (c *RedisConfig) CacheEnabled() bool {
	return c.Addr != ""
}

// Load reads the configuration, validates it and creates the data directories.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the backend selections and the values they depend on.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Index.Backend {
	case IndexChromem:
	case IndexQdrant:
		if c.Index.Dimensions == 0 {
			return errors.New("EMBEDDING_DIMENSIONS must be positive for the qdrant backend")
		}
	default:
		return fmt.Errorf("unknown INDEX_BACKEND %q", c.Index.Backend)
	}

	if c.LLM.MaxTokens <= 0 {
		return errors.New("LLM_MAX_TOKENS must be positive")
	}
	return nil
}

// EnsureDirectories creates the directories that hold on-disk stores.
func (c *Config) EnsureDirectories() error {
	var dirs []string
	if c.Database.Driver == DriverSQLite && !isMemoryPath(c.Database.Path) {
		dirs = append(dirs, filepath.Dir(c.Database.Path))
	}
	if c.Index.Backend == IndexChromem && c.Index.Path != "" {
		dirs = append(dirs, c.Index.Path)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func isMemoryPath(path string) bool {
	return strings.Contains(path, ":memory:")
}
