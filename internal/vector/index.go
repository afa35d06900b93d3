// Package vector implements a similarity-searchable embedding index on
// PostgreSQL + pgvector.
//
// Collections map to tables created at runtime: each holds points keyed by the
// originating chunk id with the embedding and a JSONB payload carrying the
// chunk text. Search uses cosine similarity normalized to [0, 1].
package vector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/minervahq/minerva/internal/log"
)

var (
	// ErrInvalidCollection indicates a collection name that is not a plain
	// SQL identifier.
	ErrInvalidCollection = errors.New("invalid collection name")

	// ErrEmptyVector indicates a zero-length embedding was passed.
	ErrEmptyVector = errors.New("empty vector")
)

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Match is a single similarity-search hit. Score is cosine similarity in
// [0, 1], higher is more similar. Text is pulled from the point payload.
type Match struct {
	ID    int64
	Score float32
	Text  string
}

// Index manages vector collections and similarity search.
// Safe for concurrent use; all state lives in PostgreSQL.
type Index struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// New creates a vector index backed by the given pool.
func New(pool *pgxpool.Pool, logger log.Logger) *Index {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Index{pool: pool, logger: logger}
}

// CreateCollection ensures a collection table with the given embedding
// dimension exists. Cosine distance is the only supported metric.
func (ix *Index) CreateCollection(ctx context.Context, name string, size int) error {
	if err := validateCollection(name); err != nil {
		return err
	}
	if size < 1 {
		return fmt.Errorf("vector size must be positive, got %d", size)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id        BIGINT PRIMARY KEY,
		embedding vector(%d) NOT NULL,
		payload   JSONB NOT NULL DEFAULT '{}'::jsonb
	)`, pgx.Identifier{name}.Sanitize(), size)

	if _, err := ix.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("creating collection %s: %w", name, err)
	}

	ix.logger.Info("collection ready", "collection", name, "vector_size", size)
	return nil
}

// Upsert inserts or replaces a single point. The id ties the embedding back
// to its source chunk; re-embedding a chunk overwrites its point in place.
func (ix *Index) Upsert(ctx context.Context, collection string, id int64, embedding []float32, payload map[string]any) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if len(embedding) == 0 {
		return ErrEmptyVector
	}

	if payload == nil {
		payload = map[string]any{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, embedding, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET embedding = EXCLUDED.embedding, payload = EXCLUDED.payload`,
		pgx.Identifier{collection}.Sanitize())

	if _, err := ix.pool.Exec(ctx, query, id, pgvector.NewVector(embedding), payloadJSON); err != nil {
		return fmt.Errorf("upserting point %d into %s: %w", id, collection, err)
	}

	return nil
}

// Search returns up to limit points whose cosine similarity to the query
// vector meets or exceeds scoreThreshold, ordered by descending similarity.
// An empty result is a normal outcome, not an error. Points whose payload
// carries no text are skipped.
func (ix *Index) Search(ctx context.Context, collection string, embedding []float32, limit int, scoreThreshold float32) ([]Match, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if len(embedding) == 0 {
		return nil, ErrEmptyVector
	}

	// Cosine similarity = 1 - cosine distance (<=> operator).
	query := fmt.Sprintf(`SELECT id, payload, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3`,
		pgx.Identifier{collection}.Sanitize())

	rows, err := ix.pool.Query(ctx, query, pgvector.NewVector(embedding), float64(scoreThreshold), limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", collection, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			id          int64
			payloadJSON []byte
			score       float64
		)
		if err := rows.Scan(&id, &payloadJSON, &score); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}

		text, ok := payloadText(payloadJSON)
		if !ok {
			ix.logger.Warn("search result missing text in payload", "collection", collection, "id", id)
			continue
		}

		matches = append(matches, Match{ID: id, Score: float32(score), Text: text})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}

	ix.logger.Debug("vector search completed",
		"collection", collection, "hits", len(matches), "limit", limit)
	return matches, nil
}

// payloadText extracts the "text" field from a point payload.
func payloadText(payloadJSON []byte) (string, bool) {
	var payload map[string]any
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return "", false
	}
	text, ok := payload["text"].(string)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

func validateCollection(name string) error {
	if !identifierRE.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}
