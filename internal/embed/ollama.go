package embed

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/minervahq/minerva/internal/log"
)

// ErrEmptyText indicates an empty string was passed for embedding.
var ErrEmptyText = errors.New("empty text")

// Ollama is an Embedder backed by an Ollama embedding model.
type Ollama struct {
	impl   *embeddings.EmbedderImpl
	model  string
	logger log.Logger
}

// NewOllama creates an embedder talking to the Ollama server at host using
// the named embedding model.
func NewOllama(host, model string, logger log.Logger) (*Ollama, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	llm, err := ollama.New(
		ollama.WithServerURL(host),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing ollama client: %w", err)
	}

	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	logger.Info("embedder initialized", "model", model, "host", host)
	return &Ollama{impl: impl, model: model, logger: logger}, nil
}

// Embed returns the embedding vector for a single text.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	vec, err := o.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding text with %s: %w", o.model, err)
	}

	return vec, nil
}

// EmbedBatch returns one vector per input text, in input order.
func (o *Ollama) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vecs, err := o.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d texts with %s: %w", len(texts), o.model, err)
	}

	return vecs, nil
}
