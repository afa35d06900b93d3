package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minervahq/minerva/db"
	"github.com/minervahq/minerva/internal/config"
	"github.com/minervahq/minerva/internal/embed"
	"github.com/minervahq/minerva/internal/llm"
	"github.com/minervahq/minerva/internal/log"
	"github.com/minervahq/minerva/internal/store"
	"github.com/minervahq/minerva/internal/vector"
)

// Setup creates and initializes the application: migrations, connection
// pool, vector collection, embedder, and the initial generator.
// On failure everything already initialized is released before returning.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, err := providePool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	a.Chunks = store.NewChunks(pool, logger)
	a.Cache = store.NewCache(pool, logger)

	a.Index = vector.New(pool, logger)
	if err := a.Index.CreateCollection(ctx, config.DefaultCollection, cfg.VectorSize); err != nil {
		return nil, fmt.Errorf("ensuring vector collection: %w", err)
	}

	embedder, err := embed.NewOllama(cfg.OllamaHost, cfg.EmbedderModel, logger)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	a.Embedder = embedder

	generator, err := llm.NewOllama(cfg.OllamaHost, llm.Settings{
		Model:       cfg.ModelName,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		TopK:        cfg.TopK,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	a.Generators = llm.NewHolder(generator)

	logger.Info("application initialized",
		"collection", config.DefaultCollection,
		"embedder_model", cfg.EmbedderModel,
		"model", cfg.ModelName,
	)
	return a, nil
}

// providePool runs migrations and opens the pgx connection pool.
func providePool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
