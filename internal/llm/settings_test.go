package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func validSettings() Settings {
	return Settings{
		Model:       "llama3.2",
		MaxTokens:   512,
		Temperature: 0.7,
		TopP:        0.9,
		TopK:        50,
	}
}

func TestSettings_Validate(t *testing.T) {
	t.Parallel()

	if err := validSettings().Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr error
	}{
		{"empty model", func(s *Settings) { s.Model = "" }, ErrInvalidModel},
		{"zero max tokens", func(s *Settings) { s.MaxTokens = 0 }, ErrInvalidMaxTokens},
		{"max tokens too large", func(s *Settings) { s.MaxTokens = 1 << 20 }, ErrInvalidMaxTokens},
		{"negative temperature", func(s *Settings) { s.Temperature = -1 }, ErrInvalidTemperature},
		{"temperature too high", func(s *Settings) { s.Temperature = 3 }, ErrInvalidTemperature},
		{"top_p zero", func(s *Settings) { s.TopP = 0 }, ErrInvalidTopP},
		{"top_p above one", func(s *Settings) { s.TopP = 1.01 }, ErrInvalidTopP},
		{"top_k zero", func(s *Settings) { s.TopK = 0 }, ErrInvalidTopK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := validSettings()
			tt.mutate(&s)

			if err := s.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewOllama_RejectsInvalidSettings(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Temperature = 9

	if _, err := NewOllama("http://localhost:11434", s, nil); !errors.Is(err, ErrInvalidTemperature) {
		t.Errorf("NewOllama with bad settings = %v, want ErrInvalidTemperature", err)
	}
}

// staticGenerator returns a fixed response; used to exercise the Holder.
type staticGenerator struct {
	reply string
}

func (g *staticGenerator) Response(_ context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return g.reply, nil
}

func TestHolder_Swap(t *testing.T) {
	t.Parallel()

	first := &staticGenerator{reply: "first"}
	second := &staticGenerator{reply: "second"}

	h := NewHolder(first)
	if got := h.Current(); got != Generator(first) {
		t.Fatalf("Current() = %v, want first generator", got)
	}

	h.Swap(second)
	resp, err := h.Current().Response(context.Background(), "hi")
	if err != nil || resp != "second" {
		t.Errorf("after swap: got (%q, %v), want (second, nil)", resp, err)
	}
}

func TestHolder_ConcurrentSwapAndRead(t *testing.T) {
	t.Parallel()

	h := NewHolder(&staticGenerator{reply: "a"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Swap(&staticGenerator{reply: "b"})
		}()
		go func() {
			defer wg.Done()
			if h.Current() == nil {
				t.Error("Current() returned nil during swaps")
			}
		}()
	}
	wg.Wait()
}
