// Package embed turns text into fixed-length embedding vectors.
package embed

import "context"

// Embedder generates embedding vectors for text. Implementations must be safe
// for concurrent use; every call is independent.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
