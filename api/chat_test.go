package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minervahq/minerva/internal/chat"
	"github.com/minervahq/minerva/internal/log"
)

// fakeQueryService records the last call and returns a canned result.
type fakeQueryService struct {
	calls        int
	gotUserID    string
	gotQuery     string
	gotTopK      int
	gotThreshold float32

	result chat.Result
	err    error
}

func (s *fakeQueryService) HandleQuery(_ context.Context, userID, query string, topK int, scoreThreshold float32) (chat.Result, error) {
	s.calls++
	s.gotUserID = userID
	s.gotQuery = query
	s.gotTopK = topK
	s.gotThreshold = scoreThreshold
	return s.result, s.err
}

func postChat(t *testing.T, h *ChatHandler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.handleChat(w, req)
	return w
}

func TestChatHandler_ParamValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		body    string
		wantErr string
	}{
		{
			name:    "missing user_id",
			target:  "/api/chat",
			body:    `{"query":"q"}`,
			wantErr: "missing user_id",
		},
		{
			name:    "non-numeric top_k",
			target:  "/api/chat?user_id=u1&top_k=three",
			body:    `{"query":"q"}`,
			wantErr: "invalid top_k",
		},
		{
			name:    "negative top_k",
			target:  "/api/chat?user_id=u1&top_k=-1",
			body:    `{"query":"q"}`,
			wantErr: "invalid top_k",
		},
		{
			name:    "score_threshold above one",
			target:  "/api/chat?user_id=u1&score_threshold=1.5",
			body:    `{"query":"q"}`,
			wantErr: "invalid score_threshold",
		},
		{
			name:    "malformed body",
			target:  "/api/chat?user_id=u1",
			body:    `{"query":`,
			wantErr: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &fakeQueryService{}
			h := NewChatHandler(svc, log.NewNop())

			w := postChat(t, h, tt.target, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantErr)
			assert.Zero(t, svc.calls, "service must not be called on invalid input")
		})
	}
}

func TestChatHandler_Success(t *testing.T) {
	t.Parallel()

	svc := &fakeQueryService{
		result: chat.Result{Response: "The deadline is September 15.", Retrieved: 3},
	}
	h := NewChatHandler(svc, log.NewNop())

	w := postChat(t, h, "/api/chat?user_id=student-1&top_k=5&score_threshold=0.8", `{"query":"When is the deadline?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "The deadline is September 15.", resp.Response)
	assert.False(t, resp.Cached)
	assert.Equal(t, "student-1", resp.UserID)
	assert.Equal(t, 3, resp.RetrievedDocs)

	assert.Equal(t, "student-1", svc.gotUserID)
	assert.Equal(t, "When is the deadline?", svc.gotQuery)
	assert.Equal(t, 5, svc.gotTopK)
	assert.InDelta(t, 0.8, svc.gotThreshold, 1e-6)
}

func TestChatHandler_CachedResponseOmitsRetrievalFields(t *testing.T) {
	t.Parallel()

	svc := &fakeQueryService{result: chat.Result{Response: "cached answer", Cached: true}}
	h := NewChatHandler(svc, log.NewNop())

	w := postChat(t, h, "/api/chat?user_id=student-1", `{"query":"same question"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, true, raw["cached"])
	assert.NotContains(t, raw, "user_id")
	assert.NotContains(t, raw, "retrieved_docs")
}

func TestChatHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "empty query is client error", err: chat.ErrEmptyQuery, wantStatus: http.StatusBadRequest},
		{name: "no context is client error", err: chat.ErrNoRelevantContext, wantStatus: http.StatusBadRequest},
		{name: "dependency failure is internal", err: errors.New("ollama unreachable"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &fakeQueryService{err: tt.err}
			h := NewChatHandler(svc, log.NewNop())

			w := postChat(t, h, "/api/chat?user_id=u1", `{"query":"q"}`)
			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusInternalServerError {
				// Internal causes stay out of the response body.
				assert.NotContains(t, w.Body.String(), "ollama")
			}
		})
	}
}
