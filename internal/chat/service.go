// Package chat implements the retrieval-augmented query pipeline: cache
// probe, query embedding, vector retrieval, prompt construction, generation,
// and best-effort persistence, with the failure policy that goes with each
// step.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minervahq/minerva/internal/embed"
	"github.com/minervahq/minerva/internal/llm"
	"github.com/minervahq/minerva/internal/log"
	"github.com/minervahq/minerva/internal/prompt"
	"github.com/minervahq/minerva/internal/vector"
)

var (
	// ErrEmptyQuery indicates the query was empty after trimming. The caller
	// can recover by changing the input.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrNoRelevantContext indicates no retrieved item cleared the score
	// threshold. The pipeline refuses to generate without grounding context.
	ErrNoRelevantContext = errors.New("no relevant information found to answer your query")

	// ErrNoGenerator indicates no generator is configured.
	ErrNoGenerator = errors.New("no generator configured")
)

// Cache is the exact-match response cache consumed by the pipeline.
// A lookup or record failure is never fatal to a request.
type Cache interface {
	Lookup(ctx context.Context, userID, query string) (string, bool, error)
	Record(ctx context.Context, userID, query, response string) error
}

// Retriever performs vector similarity search over a collection.
type Retriever interface {
	Search(ctx context.Context, collection string, embedding []float32, limit int, scoreThreshold float32) ([]vector.Match, error)
}

// Generators yields the generator currently in use. The pipeline reads it
// once per request, near the point of use, so a concurrent reconfiguration
// never leaves a request on a half-replaced backend.
type Generators interface {
	Current() llm.Generator
}

// Result is the outcome of a successfully handled query.
type Result struct {
	Response  string
	Cached    bool
	Retrieved int
}

// Defaults are the retrieval parameters applied when a request does not
// override them.
type Defaults struct {
	TopK           int
	ScoreThreshold float32
}

// Service sequences one query through the pipeline. Each external call is
// attempted exactly once; there are no retries.
type Service struct {
	cache      Cache
	embedder   embed.Embedder
	retriever  Retriever
	generators Generators
	collection string
	defaults   Defaults
	logger     log.Logger
}

// New creates the query service.
func New(cache Cache, embedder embed.Embedder, retriever Retriever, generators Generators, collection string, defaults Defaults, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	if defaults.TopK <= 0 {
		defaults.TopK = 3
	}
	if defaults.ScoreThreshold <= 0 {
		defaults.ScoreThreshold = 0.7
	}
	return &Service{
		cache:      cache,
		embedder:   embedder,
		retriever:  retriever,
		generators: generators,
		collection: collection,
		defaults:   defaults,
		logger:     logger,
	}
}

// HandleQuery runs one query end to end.
//
// Outcomes: (Result, nil) on success or cache hit; ErrEmptyQuery or
// ErrNoRelevantContext for client-recoverable rejections; any other error is
// an internal failure with the cause wrapped.
//
// topK and scoreThreshold fall back to the service defaults when they are
// zero or negative.
func (s *Service) HandleQuery(ctx context.Context, userID, query string, topK int, scoreThreshold float32) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}

	if topK <= 0 {
		topK = s.defaults.TopK
	}
	if scoreThreshold <= 0 {
		scoreThreshold = s.defaults.ScoreThreshold
	}

	// Cache probe. A cache failure degrades to a miss: the cache is an
	// optimization, never a hard dependency.
	cached, hit, err := s.cache.Lookup(ctx, userID, query)
	if err != nil {
		s.logger.Warn("cache lookup failed, treating as miss", "user_id", userID, "error", err)
	} else if hit {
		s.logger.Info("cache hit", "user_id", userID)
		return Result{Response: cached, Cached: true}, nil
	}

	// Embed the query. Nothing downstream can proceed without the vector.
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("embedding query: %w", err)
	}

	// Retrieve grounding context. Zero hits is a meaningful outcome: the
	// generator must never improvise without context.
	matches, err := s.retriever.Search(ctx, s.collection, embedding, topK, scoreThreshold)
	if err != nil {
		return Result{}, fmt.Errorf("retrieving context: %w", err)
	}
	if len(matches) == 0 {
		s.logger.Warn("no relevant documents found", "user_id", userID, "threshold", scoreThreshold)
		return Result{}, ErrNoRelevantContext
	}

	p := prompt.Build(prompt.FormatContext(matches), query)

	// Read the current generator once, at the point of use.
	gen := s.generators.Current()
	if gen == nil {
		return Result{}, ErrNoGenerator
	}

	response, err := gen.Response(ctx, p)
	if err != nil {
		return Result{}, fmt.Errorf("generating response: %w", err)
	}

	// Best-effort persistence: the user already has their answer, so a
	// failed write is logged and ignored.
	if err := s.cache.Record(ctx, userID, query, response); err != nil {
		s.logger.Error("failed to store query response", "user_id", userID, "error", err)
	}

	s.logger.Debug("query handled", "user_id", userID, "retrieved", len(matches))
	return Result{Response: response, Cached: false, Retrieved: len(matches)}, nil
}

// IsClientError reports whether err represents a rejection the caller can
// recover from by changing the request, as opposed to an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyQuery) || errors.Is(err, ErrNoRelevantContext)
}
