package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidModel indicates an empty or malformed model name.
	ErrInvalidModel = errors.New("invalid model")

	// ErrInvalidTemperature indicates a sampling temperature out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates a max token count out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidTopP indicates a nucleus sampling threshold out of range.
	ErrInvalidTopP = errors.New("invalid top_p")

	// ErrInvalidTopK indicates a top-k sampling value out of range.
	ErrInvalidTopK = errors.New("invalid top_k")
)

// Settings are the generation parameters for a backend. A Settings value is
// validated in full before any backend is constructed from it, so a rejected
// reconfiguration never disturbs the running generator.
type Settings struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
}

// Validate checks all parameters and returns a sentinel error for the first
// violation found.
func (s Settings) Validate() error {
	if s.Model == "" {
		return fmt.Errorf("%w: model cannot be empty", ErrInvalidModel)
	}
	if s.MaxTokens < 1 || s.MaxTokens > 131072 {
		return fmt.Errorf("%w: must be between 1 and 131,072, got %d", ErrInvalidMaxTokens, s.MaxTokens)
	}
	if s.Temperature < 0.0 || s.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, s.Temperature)
	}
	if s.TopP <= 0.0 || s.TopP > 1.0 {
		return fmt.Errorf("%w: must be in (0.0, 1.0], got %.2f", ErrInvalidTopP, s.TopP)
	}
	if s.TopK < 1 {
		return fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidTopK, s.TopK)
	}
	return nil
}
