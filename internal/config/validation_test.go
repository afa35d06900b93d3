package config

import (
	"errors"
	"testing"
)

// validConfig returns a configuration that passes Validate().
func validConfig() *Config {
	return &Config{
		Host:                  "127.0.0.1",
		Port:                  8000,
		DocumentDir:           "assets/documents",
		AllowedTypes:          []string{"pdf", "txt"},
		MaxFileSize:           10 << 20,
		ChunkSize:             500,
		ChunkOverlap:          50,
		OllamaHost:            "http://localhost:11434",
		EmbedderModel:         "nomic-embed-text",
		VectorSize:            768,
		ModelName:             "llama3.2",
		MaxTokens:             512,
		Temperature:           0.7,
		TopP:                  0.9,
		TopK:                  50,
		PostgresHost:          "localhost",
		PostgresPort:          5432,
		PostgresUser:          "minerva",
		PostgresPassword:      "secret-password",
		PostgresDBName:        "minerva",
		PostgresSSLMode:       "disable",
		TopKDefault:           3,
		ScoreThresholdDefault: 0.7,
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() on valid config: %v", err)
	}
}

func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()

	var c *Config
	if err := c.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("expected ErrConfigNil, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"port too large", func(c *Config) { c.Port = 70000 }, ErrInvalidServerPort},
		{"empty model name", func(c *Config) { c.ModelName = "" }, ErrInvalidModelName},
		{"negative temperature", func(c *Config) { c.Temperature = -0.1 }, ErrInvalidTemperature},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, ErrInvalidTemperature},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }, ErrInvalidMaxTokens},
		{"top_p zero", func(c *Config) { c.TopP = 0 }, ErrInvalidTopP},
		{"top_p above one", func(c *Config) { c.TopP = 1.5 }, ErrInvalidTopP},
		{"top_k zero", func(c *Config) { c.TopK = 0 }, ErrInvalidTopK},
		{"empty embedder model", func(c *Config) { c.EmbedderModel = "" }, ErrInvalidEmbedderModel},
		{"zero vector size", func(c *Config) { c.VectorSize = 0 }, ErrInvalidVectorSize},
		{"bad ollama host", func(c *Config) { c.OllamaHost = "localhost:11434" }, ErrInvalidOllamaHost},
		{"empty document dir", func(c *Config) { c.DocumentDir = "" }, ErrInvalidDocumentDir},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, ErrInvalidChunking},
		{"overlap >= size", func(c *Config) { c.ChunkOverlap = 500 }, ErrInvalidChunking},
		{"empty postgres host", func(c *Config) { c.PostgresHost = "" }, ErrInvalidPostgresHost},
		{"postgres port out of range", func(c *Config) { c.PostgresPort = 0 }, ErrInvalidPostgresPort},
		{"empty db name", func(c *Config) { c.PostgresDBName = "" }, ErrInvalidPostgresDBName},
		{"unknown ssl mode", func(c *Config) { c.PostgresSSLMode = "maybe" }, ErrInvalidPostgresSSLMode},
		{"retrieval top_k zero", func(c *Config) { c.TopKDefault = 0 }, ErrInvalidRetrieval},
		{"threshold above one", func(c *Config) { c.ScoreThresholdDefault = 1.1 }, ErrInvalidRetrieval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
