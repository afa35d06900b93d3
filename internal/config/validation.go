package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// validSSLModes are the PostgreSQL sslmode values accepted by pgx.
var validSSLModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// 1. Server
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidServerPort, c.Port)
	}

	// 2. Generator defaults
	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}

	// Temperature range: 0.0 (deterministic) to 2.0 (maximum creativity)
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}

	if c.MaxTokens < 1 || c.MaxTokens > 131072 {
		return fmt.Errorf("%w: must be between 1 and 131,072, got %d", ErrInvalidMaxTokens, c.MaxTokens)
	}

	if c.TopP <= 0.0 || c.TopP > 1.0 {
		return fmt.Errorf("%w: must be in (0.0, 1.0], got %.2f", ErrInvalidTopP, c.TopP)
	}

	if c.TopK < 1 {
		return fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidTopK, c.TopK)
	}

	// 3. Embedding
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidEmbedderModel)
	}

	if c.VectorSize < 1 || c.VectorSize > 4096 {
		return fmt.Errorf("%w: must be between 1 and 4096, got %d", ErrInvalidVectorSize, c.VectorSize)
	}

	if !strings.HasPrefix(c.OllamaHost, "http://") && !strings.HasPrefix(c.OllamaHost, "https://") {
		return fmt.Errorf("%w: must start with http:// or https://, got %q", ErrInvalidOllamaHost, c.OllamaHost)
	}

	// 4. Document ingestion
	if c.DocumentDir == "" {
		return fmt.Errorf("%w: document_dir cannot be empty", ErrInvalidDocumentDir)
	}

	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}

	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got %d",
			ErrInvalidChunking, c.ChunkOverlap)
	}

	// 5. PostgreSQL
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}

	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: must be one of %v, got %q",
			ErrInvalidPostgresSSLMode, validSSLModes, c.PostgresSSLMode)
	}

	// Warn if using the default dev password, but don't block local development.
	if c.PostgresPassword == "minerva_dev_password" {
		slog.Warn("using default development password for PostgreSQL",
			"hint", "change postgres_password in config.yaml for production deployments")
	}

	// 6. Retrieval defaults
	if c.TopKDefault < 1 || c.TopKDefault > 20 {
		return fmt.Errorf("%w: retrieval_top_k must be between 1 and 20, got %d",
			ErrInvalidRetrieval, c.TopKDefault)
	}

	if c.ScoreThresholdDefault < 0.0 || c.ScoreThresholdDefault > 1.0 {
		return fmt.Errorf("%w: retrieval_score_threshold must be in [0.0, 1.0], got %.2f",
			ErrInvalidRetrieval, c.ScoreThresholdDefault)
	}

	return nil
}
