package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minervahq/minerva/internal/config"
	"github.com/minervahq/minerva/internal/llm"
	"github.com/minervahq/minerva/internal/log"
)

func TestAppClose_PartiallyInitialized(t *testing.T) {
	t.Parallel()

	a := &App{Logger: log.NewNop()}
	require.NoError(t, a.Close())

	// A zero App must also close cleanly, since Setup's error path calls
	// Close before anything is wired.
	var empty App
	require.NoError(t, empty.Close())
}

func TestAppServer_RoutesWired(t *testing.T) {
	t.Parallel()

	a := &App{
		Config: &config.Config{
			DocumentDir:           t.TempDir(),
			AllowedTypes:          []string{".pdf", ".txt"},
			MaxFileSize:           1 << 20,
			ChunkSize:             500,
			ChunkOverlap:          50,
			TopKDefault:           3,
			ScoreThresholdDefault: 0.7,
		},
		Logger:     log.NewNop(),
		Generators: llm.NewHolder(nil),
	}

	handler := a.Server().Handler()

	// Every route must resolve; a 404 here means a handler was not mounted.
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/ready"},
		{http.MethodPost, "/api/upload"},
		{http.MethodPost, "/api/chunks"},
		{http.MethodPost, "/api/embeddings"},
		{http.MethodPost, "/api/chat"},
		{http.MethodPut, "/api/generator"},
	}

	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.NotEqual(t, http.StatusNotFound, w.Code, "%s %s not mounted", rt.method, rt.path)
		assert.NotEqual(t, http.StatusMethodNotAllowed, w.Code, "%s %s wrong method", rt.method, rt.path)
	}
}
