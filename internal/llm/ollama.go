package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/minervahq/minerva/internal/log"
)

// Ollama is a Generator backed by an Ollama chat model. The value is
// immutable after construction; reconfiguration builds a new Ollama and swaps
// it into the Holder.
type Ollama struct {
	llm      *ollama.LLM
	settings Settings
	logger   log.Logger
}

// NewOllama creates a generator for the given settings. Settings are
// validated first; an invalid Settings value never reaches the Ollama client.
func NewOllama(host string, settings Settings, logger log.Logger) (*Ollama, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}

	client, err := ollama.New(
		ollama.WithServerURL(host),
		ollama.WithModel(settings.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing ollama client: %w", err)
	}

	logger.Info("generator initialized",
		"model", settings.Model,
		"temperature", settings.Temperature,
		"top_p", settings.TopP,
		"top_k", settings.TopK,
		"max_tokens", settings.MaxTokens)

	return &Ollama{llm: client, settings: settings, logger: logger}, nil
}

// Settings returns the generation parameters this backend was built with.
func (o *Ollama) Settings() Settings {
	return o.settings
}

// Response generates a completion for the prompt.
func (o *Ollama) Response(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, o.llm, prompt,
		llms.WithMaxTokens(o.settings.MaxTokens),
		llms.WithTemperature(o.settings.Temperature),
		llms.WithTopP(o.settings.TopP),
		llms.WithTopK(o.settings.TopK),
	)
	if err != nil {
		return "", fmt.Errorf("generating with %s: %w", o.settings.Model, err)
	}

	o.logger.Debug("generated response",
		"model", o.settings.Model,
		"prompt_len", len(prompt),
		"response_len", len(completion))
	return completion, nil
}
