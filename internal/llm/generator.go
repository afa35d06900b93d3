// Package llm provides the text-generation backend behind a single Generator
// contract, plus the runtime settings and hot-swap machinery that let the
// backend be reconfigured while requests are in flight.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyPrompt indicates Response was called with an empty prompt.
var ErrEmptyPrompt = errors.New("empty prompt")

// Generator produces a completion for a prompt. Implementations must be safe
// for concurrent use; each call is independent.
//
// The orchestrator depends only on this interface, so backends are swappable
// without touching the query pipeline.
type Generator interface {
	Response(ctx context.Context, prompt string) (string, error)
}
