package api

import (
	"encoding/json"
	"net/http"

	"github.com/minervahq/minerva/internal/llm"
	"github.com/minervahq/minerva/internal/log"
)

// GeneratorSwapper installs a new generator for subsequent queries.
type GeneratorSwapper interface {
	Swap(g llm.Generator)
}

// BuildGenerator constructs a generator from validated settings.
type BuildGenerator func(settings llm.Settings) (llm.Generator, error)

// GeneratorHandler handles runtime generator reconfiguration.
type GeneratorHandler struct {
	build  BuildGenerator
	holder GeneratorSwapper
	logger log.Logger
}

// NewGeneratorHandler creates the generator settings handler.
func NewGeneratorHandler(build BuildGenerator, holder GeneratorSwapper, logger log.Logger) *GeneratorHandler {
	return &GeneratorHandler{build: build, holder: holder, logger: logger}
}

// RegisterRoutes registers generator routes on the given mux.
func (h *GeneratorHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("PUT /api/generator", h.handleSwap)
}

type generatorResponse struct {
	Status   string       `json:"status"`
	Settings llm.Settings `json:"settings"`
}

// handleSwap validates the submitted settings, builds the new generator,
// and only then installs it. A rejected request leaves the previous
// generator serving queries. Concurrent swaps race benignly: the last
// installed generator wins.
func (h *GeneratorHandler) handleSwap(w http.ResponseWriter, r *http.Request) {
	var settings llm.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := settings.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings", err.Error())
		return
	}

	gen, err := h.build(settings)
	if err != nil {
		h.logger.Error("failed to build generator", "model", settings.Model, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "failed to configure generator")
		return
	}

	h.holder.Swap(gen)
	h.logger.Info("generator reconfigured", "model", settings.Model)
	writeJSON(w, http.StatusOK, generatorResponse{Status: "success", Settings: settings})
}
