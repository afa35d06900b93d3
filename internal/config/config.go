// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.minerva/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Server: HTTP listen address
//   - Documents: upload directory, allowed types, chunking parameters
//   - Storage: PostgreSQL connection (see storage.go)
//   - Embedding: Ollama host, embedder model, vector dimension
//   - Generator: default text-generation settings
//
// Validation uses sentinel errors so callers can check causes with
// errors.Is(); see validation.go.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidServerPort indicates the HTTP port is out of range.
	ErrInvalidServerPort = errors.New("invalid server port")

	// ErrInvalidModelName indicates the generator model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidTopP indicates the nucleus sampling threshold is out of range.
	ErrInvalidTopP = errors.New("invalid top_p")

	// ErrInvalidTopK indicates the top-k sampling value is out of range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidVectorSize indicates the embedding dimension is invalid.
	ErrInvalidVectorSize = errors.New("invalid vector size")

	// ErrInvalidOllamaHost indicates the Ollama host is invalid.
	ErrInvalidOllamaHost = errors.New("invalid Ollama host")

	// ErrInvalidChunking indicates chunk size/overlap values are inconsistent.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidDocumentDir indicates the document directory is not set.
	ErrInvalidDocumentDir = errors.New("invalid document directory")

	// ErrInvalidRetrieval indicates retrieval defaults are out of range.
	ErrInvalidRetrieval = errors.New("invalid retrieval defaults")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

// DefaultCollection is the vector collection queries are served from.
const DefaultCollection = "embeddings"

// Config stores application configuration.
type Config struct {
	// HTTP server
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// Document ingestion
	DocumentDir  string   `mapstructure:"document_dir"`
	AllowedTypes []string `mapstructure:"allowed_types"`
	MaxFileSize  int64    `mapstructure:"max_file_size"` // bytes
	ChunkSize    int      `mapstructure:"chunk_size"`
	ChunkOverlap int      `mapstructure:"chunk_overlap"`

	// Embedding
	OllamaHost    string `mapstructure:"ollama_host"`
	EmbedderModel string `mapstructure:"embedder_model"`
	VectorSize    int    `mapstructure:"vector_size"`

	// Generator defaults (hot-swappable at runtime via the API)
	ModelName   string  `mapstructure:"model_name"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	TopK        int     `mapstructure:"top_k"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Retrieval defaults (caller-overridable per request)
	TopKDefault           int     `mapstructure:"retrieval_top_k"`
	ScoreThresholdDefault float64 `mapstructure:"retrieval_score_threshold"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	// .env is optional; ignore a missing file but keep any parse errors visible.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug("no .env file loaded", "error", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".minerva")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL takes precedence over the individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// Server defaults
	viper.SetDefault("host", "127.0.0.1")
	viper.SetDefault("port", 8000)

	// Document defaults
	viper.SetDefault("document_dir", "assets/documents")
	viper.SetDefault("allowed_types", []string{"pdf", "txt"})
	viper.SetDefault("max_file_size", int64(10<<20))
	viper.SetDefault("chunk_size", 500)
	viper.SetDefault("chunk_overlap", 50)

	// Embedding defaults (nomic-embed-text outputs 768 dimensions)
	viper.SetDefault("ollama_host", "http://localhost:11434")
	viper.SetDefault("embedder_model", "nomic-embed-text")
	viper.SetDefault("vector_size", 768)

	// Generator defaults
	viper.SetDefault("model_name", "llama3.2")
	viper.SetDefault("max_tokens", 512)
	viper.SetDefault("temperature", 0.7)
	viper.SetDefault("top_p", 0.9)
	viper.SetDefault("top_k", 50)

	// PostgreSQL defaults (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "minerva")
	viper.SetDefault("postgres_password", "minerva_dev_password")
	viper.SetDefault("postgres_db_name", "minerva")
	viper.SetDefault("postgres_ssl_mode", "disable")

	// Retrieval defaults
	viper.SetDefault("retrieval_top_k", 3)
	viper.SetDefault("retrieval_score_threshold", 0.7)
}

// bindEnvVariables binds environment variables explicitly.
// Only secrets and deployment-specific values; everything else belongs in the
// config file.
func bindEnvVariables() {
	_ = viper.BindEnv("postgres_password", "MINERVA_POSTGRES_PASSWORD")
	_ = viper.BindEnv("postgres_host", "MINERVA_POSTGRES_HOST")
	_ = viper.BindEnv("ollama_host", "MINERVA_OLLAMA_HOST")
	_ = viper.BindEnv("document_dir", "MINERVA_DOCUMENT_DIR")
}
