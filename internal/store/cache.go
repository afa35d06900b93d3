package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minervahq/minerva/internal/log"
)

// Cache is the exact-match query/response cache over the query_responses
// table. Lookups compare the verbatim query text filtered by user id; there
// is no normalization and no similarity matching, so a rephrased question is
// always a miss.
type Cache struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// NewCache creates a response cache backed by the given pool.
func NewCache(pool *pgxpool.Pool, logger log.Logger) *Cache {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Cache{pool: pool, logger: logger}
}

// Lookup returns the stored response for (userID, query), if any.
// The second return value reports whether a row matched.
func (c *Cache) Lookup(ctx context.Context, userID, query string) (string, bool, error) {
	var response string
	err := c.pool.QueryRow(ctx,
		`SELECT response FROM query_responses
		 WHERE user_id = $1 AND query = $2
		 ORDER BY id
		 LIMIT 1`,
		userID, query,
	).Scan(&response)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup: %w", err)
	}

	return response, true, nil
}

// Record stores a generated response for (userID, query). Rows are
// append-only; duplicate pairs from racing requests are allowed and the
// earliest row wins future lookups.
func (c *Cache) Record(ctx context.Context, userID, query, response string) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO query_responses (user_id, query, response) VALUES ($1, $2, $3)`,
		userID, query, response,
	)
	if err != nil {
		return fmt.Errorf("recording query response: %w", err)
	}

	c.logger.Debug("recorded query response", "user_id", userID, "query_len", len(query))
	return nil
}

// Clear removes all cached responses.
func (c *Cache) Clear(ctx context.Context) error {
	return ClearTable(ctx, c.pool, "query_responses")
}
