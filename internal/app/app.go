// Package app provides application initialization and dependency wiring.
//
// App is the container that owns the database pool, the storage and vector
// layers, the embedder, and the generator holder, and assembles the HTTP
// server from them.
package app

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minervahq/minerva/api"
	"github.com/minervahq/minerva/internal/chat"
	"github.com/minervahq/minerva/internal/config"
	"github.com/minervahq/minerva/internal/embed"
	"github.com/minervahq/minerva/internal/ingest"
	"github.com/minervahq/minerva/internal/llm"
	"github.com/minervahq/minerva/internal/log"
	"github.com/minervahq/minerva/internal/store"
	"github.com/minervahq/minerva/internal/vector"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Pool       *pgxpool.Pool
	Chunks     *store.Chunks
	Cache      *store.Cache
	Index      *vector.Index
	Embedder   embed.Embedder
	Generators *llm.Holder
}

// Close releases all resources. Safe to call on a partially initialized App.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	return nil
}

// Server assembles the HTTP server from the container's components.
func (a *App) Server() *api.Server {
	cfg := a.Config

	service := chat.New(
		a.Cache,
		a.Embedder,
		a.Index,
		a.Generators,
		config.DefaultCollection,
		chat.Defaults{TopK: cfg.TopKDefault, ScoreThreshold: float32(cfg.ScoreThresholdDefault)},
		a.Logger,
	)

	buildGenerator := func(settings llm.Settings) (llm.Generator, error) {
		return llm.NewOllama(cfg.OllamaHost, settings, a.Logger)
	}

	return api.NewServer(api.ServerConfig{
		Health: api.NewHealthHandler(a.Pool, a.Logger),
		Ingest: api.NewIngestHandler(api.IngestConfig{
			DocumentDir: cfg.DocumentDir,
			MaxFileSize: cfg.MaxFileSize,
			Collection:  config.DefaultCollection,
			Loader:      ingest.NewLoader(cfg.AllowedTypes, a.Logger),
			Splitter:    ingest.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
			Chunks:      a.Chunks,
			Embedder:    a.Embedder,
			Index:       a.Index,
			Logger:      a.Logger,
		}),
		Chat:      api.NewChatHandler(service, a.Logger),
		Generator: api.NewGeneratorHandler(buildGenerator, a.Generators, a.Logger),
	})
}
