package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/minervahq/minerva/internal/chat"
	"github.com/minervahq/minerva/internal/log"
)

// QueryService answers one user query through the retrieval pipeline.
type QueryService interface {
	HandleQuery(ctx context.Context, userID, query string, topK int, scoreThreshold float32) (chat.Result, error)
}

// ChatHandler handles the query endpoint.
type ChatHandler struct {
	svc    QueryService
	logger log.Logger
}

// NewChatHandler creates a chat handler backed by the given query service.
func NewChatHandler(svc QueryService, logger log.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handleChat)
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Status        string `json:"status"`
	Response      string `json:"response"`
	Cached        bool   `json:"cached"`
	UserID        string `json:"user_id,omitempty"`
	RetrievedDocs int    `json:"retrieved_docs,omitempty"`
}

// handleChat answers POST /api/chat?user_id=&top_k=&score_threshold= with a
// JSON body {"query": "..."}.
func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id", "user_id query parameter is required")
		return
	}

	topK, err := parseIntParam(r, "top_k")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid top_k", err.Error())
		return
	}
	threshold, err := parseFloatParam(r, "score_threshold")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid score_threshold", err.Error())
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.svc.HandleQuery(r.Context(), userID, req.Query, topK, threshold)
	if err != nil {
		if chat.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "query rejected", err.Error())
			return
		}
		h.logger.Error("chat request failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "failed to process query")
		return
	}

	resp := chatResponse{
		Status:   "success",
		Response: result.Response,
		Cached:   result.Cached,
	}
	if !result.Cached {
		resp.UserID = userID
		resp.RetrievedDocs = result.Retrieved
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseIntParam reads an optional positive integer query parameter; zero
// means "not set".
func parseIntParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, &paramError{name: name, value: raw, want: "a positive integer"}
	}
	return v, nil
}

// parseFloatParam reads an optional positive float query parameter; zero
// means "not set".
func parseFloatParam(r *http.Request, name string) (float32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil || v <= 0 || v > 1 {
		return 0, &paramError{name: name, value: raw, want: "a number in (0, 1]"}
	}
	return float32(v), nil
}

type paramError struct {
	name  string
	value string
	want  string
}

func (e *paramError) Error() string {
	return e.name + " must be " + e.want + ", got " + strconv.Quote(e.value)
}
