// Package store implements the relational layer: document chunks produced by
// ingestion and the exact-match query/response cache. Both live in PostgreSQL
// and share a single pgx connection pool.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minervahq/minerva/internal/log"
)

// ErrInvalidTable indicates a table name that is not a plain SQL identifier.
var ErrInvalidTable = errors.New("invalid table name")

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Chunk is one bounded span of source-document text with provenance metadata.
// Page is -1 when the source format carries no page information.
type Chunk struct {
	ID     int64
	Text   string
	Page   int
	Source string
	Author string
}

// Chunks persists document chunks. Ids are assigned by a bigserial sequence
// and never recycled, so a chunk id always refers to at most one text.
type Chunks struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// NewChunks creates a chunk store backed by the given pool.
func NewChunks(pool *pgxpool.Pool, logger log.Logger) *Chunks {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Chunks{pool: pool, logger: logger}
}

// Insert stores the given chunks and returns the number of rows written.
// Uses COPY for bulk throughput; ids are assigned by the database.
func (s *Chunks) Insert(ctx context.Context, chunks []Chunk) (int64, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"chunks"},
		[]string{"text", "page", "source", "author"},
		pgx.CopyFromSlice(len(chunks), func(i int) ([]any, error) {
			c := chunks[i]
			return []any{c.Text, c.Page, c.Source, c.Author}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting chunks: %w", err)
	}

	s.logger.Info("inserted chunks", "count", n)
	return n, nil
}

// All returns every stored chunk, oldest first. The embedding phase uses the
// returned ids as vector-index keys.
func (s *Chunks) All(ctx context.Context) ([]Chunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, text, page, source, author FROM chunks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("selecting chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.Text, &c.Page, &c.Source, &c.Author); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chunk rows: %w", err)
	}

	return chunks, nil
}

// Clear removes all chunk rows. The id sequence is left untouched so deleted
// ids are never reused for different text.
func (s *Chunks) Clear(ctx context.Context) error {
	return ClearTable(ctx, s.pool, "chunks")
}

// ClearTable deletes all rows from the named table. The table name must be a
// plain SQL identifier; anything else is rejected before touching the
// database.
func ClearTable(ctx context.Context, pool *pgxpool.Pool, table string) error {
	if !identifierRE.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", pgx.Identifier{table}.Sanitize())); err != nil {
		return fmt.Errorf("clearing table %s: %w", table, err)
	}

	return nil
}
