package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minervahq/minerva/internal/llm"
	"github.com/minervahq/minerva/internal/log"
)

type fakeHolder struct {
	swapCalls int
	last      llm.Generator
}

func (h *fakeHolder) Swap(g llm.Generator) {
	h.swapCalls++
	h.last = g
}

type echoGenerator struct {
	model string
}

func (g *echoGenerator) Response(_ context.Context, _ string) (string, error) {
	return g.model, nil
}

func putGenerator(t *testing.T, h *GeneratorHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/api/generator", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.handleSwap(w, req)
	return w
}

func validSettingsBody() string {
	return `{"model":"llama3.2","max_tokens":512,"temperature":0.2,"top_p":0.9,"top_k":40}`
}

func TestGeneratorHandler_Swap(t *testing.T) {
	t.Parallel()

	holder := &fakeHolder{}
	var gotSettings llm.Settings
	build := func(s llm.Settings) (llm.Generator, error) {
		gotSettings = s
		return &echoGenerator{model: s.Model}, nil
	}
	h := NewGeneratorHandler(build, holder, log.NewNop())

	w := putGenerator(t, h, validSettingsBody())
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, holder.swapCalls)
	assert.Equal(t, "llama3.2", gotSettings.Model)
	require.IsType(t, &echoGenerator{}, holder.last)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
}

func TestGeneratorHandler_RejectedSettingsKeepPreviousGenerator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"model":`},
		{name: "missing model", body: `{"max_tokens":512,"temperature":0.2,"top_p":0.9,"top_k":40}`},
		{name: "temperature out of range", body: `{"model":"llama3.2","max_tokens":512,"temperature":9,"top_p":0.9,"top_k":40}`},
		{name: "zero max_tokens", body: `{"model":"llama3.2","max_tokens":0,"temperature":0.2,"top_p":0.9,"top_k":40}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			holder := &fakeHolder{}
			build := func(llm.Settings) (llm.Generator, error) {
				t.Fatal("build must not run for rejected settings")
				return nil, nil
			}
			h := NewGeneratorHandler(build, holder, log.NewNop())

			w := putGenerator(t, h, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, holder.swapCalls, "rejected settings must not replace the generator")
		})
	}
}

func TestGeneratorHandler_BuildFailure(t *testing.T) {
	t.Parallel()

	holder := &fakeHolder{}
	build := func(llm.Settings) (llm.Generator, error) {
		return nil, errors.New("backend unreachable")
	}
	h := NewGeneratorHandler(build, holder, log.NewNop())

	w := putGenerator(t, h, validSettingsBody())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, holder.swapCalls)
	assert.NotContains(t, w.Body.String(), "backend unreachable")
}
