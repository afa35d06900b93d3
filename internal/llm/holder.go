package llm

import "sync/atomic"

// Holder is the process-wide cell holding the current Generator. The
// generator is replaced, never mutated in place: reconfiguration constructs a
// fully validated replacement and publishes it with a single atomic swap.
//
// Readers take the reference once, near the point of use; a request that
// started before a swap simply finishes on the generator it read. Last writer
// wins.
type Holder struct {
	gen atomic.Pointer[Generator]
}

// NewHolder creates a holder seeded with the given generator.
func NewHolder(g Generator) *Holder {
	h := &Holder{}
	h.gen.Store(&g)
	return h
}

// Current returns the generator in use right now.
func (h *Holder) Current() Generator {
	if p := h.gen.Load(); p != nil {
		return *p
	}
	return nil
}

// Swap replaces the current generator. The previous one is left to finish any
// in-flight calls and be collected.
func (h *Holder) Swap(g Generator) {
	h.gen.Store(&g)
}
