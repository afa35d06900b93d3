package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/minervahq/minerva/internal/embed"
	"github.com/minervahq/minerva/internal/ingest"
	"github.com/minervahq/minerva/internal/log"
	"github.com/minervahq/minerva/internal/store"
)

// ChunkStore is the relational chunk storage consumed by the ingest
// endpoints.
type ChunkStore interface {
	Insert(ctx context.Context, chunks []store.Chunk) (int64, error)
	All(ctx context.Context) ([]store.Chunk, error)
	Clear(ctx context.Context) error
}

// VectorUpserter writes embeddings into a collection.
type VectorUpserter interface {
	Upsert(ctx context.Context, collection string, id int64, embedding []float32, payload map[string]any) error
}

// IngestConfig carries the dependencies and settings for the ingest
// endpoints.
type IngestConfig struct {
	DocumentDir string
	MaxFileSize int64
	Collection  string
	Loader      *ingest.Loader
	Splitter    ingest.Splitter
	Chunks      ChunkStore
	Embedder    embed.Embedder
	Index       VectorUpserter
	Logger      log.Logger
}

// IngestHandler handles document upload, chunking, and embedding endpoints.
type IngestHandler struct {
	cfg IngestConfig
}

// NewIngestHandler creates the ingest handler.
func NewIngestHandler(cfg IngestConfig) *IngestHandler {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	return &IngestHandler{cfg: cfg}
}

// RegisterRoutes registers ingest routes on the given mux.
func (h *IngestHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", h.handleUpload)
	mux.HandleFunc("POST /api/chunks", h.handleChunks)
	mux.HandleFunc("POST /api/embeddings", h.handleEmbeddings)
}

type uploadResponse struct {
	Status   string `json:"status"`
	FileName string `json:"file_name"`
}

// handleUpload accepts one multipart file under the "file" field and stores
// it in the document directory under a unique name.
func (h *IngestHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file", `multipart field "file" is required`)
		return
	}
	defer file.Close()

	if !h.cfg.Loader.Supported(header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported file type",
			fmt.Sprintf("%s is not an accepted document type", filepath.Ext(header.Filename)))
		return
	}

	path, err := ingest.SaveUpload(h.cfg.DocumentDir, header.Filename, file, h.cfg.MaxFileSize)
	if err != nil {
		if errors.Is(err, ingest.ErrFileTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large", err.Error())
			return
		}
		h.cfg.Logger.Error("failed to store upload", "file", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "failed to store upload")
		return
	}

	h.cfg.Logger.Info("file uploaded", "stored_as", filepath.Base(path))
	writeJSON(w, http.StatusOK, uploadResponse{Status: "success", FileName: filepath.Base(path)})
}

type chunksRequest struct {
	FilePath string `json:"file_path,omitempty"`
	Author   string `json:"author,omitempty"`
	DoReset  bool   `json:"do_reset"`
}

type chunksResponse struct {
	Status         string `json:"status"`
	InsertedChunks int64  `json:"inserted_chunks"`
}

// handleChunks loads documents, splits them, and inserts the chunks. With
// file_path set only that stored file is processed; otherwise the whole
// document directory is. do_reset clears the chunks table first.
func (h *IngestHandler) handleChunks(w http.ResponseWriter, r *http.Request) {
	var req chunksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	docs, err := h.loadDocuments(req.FilePath)
	if err != nil {
		var perr *paramError
		if errors.As(err, &perr) {
			writeError(w, http.StatusBadRequest, "invalid file_path", perr.Error())
			return
		}
		h.cfg.Logger.Error("failed to load documents", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "failed to load documents")
		return
	}

	chunks, err := h.cfg.Splitter.SplitAll(docs, req.Author)
	if err != nil {
		h.cfg.Logger.Error("failed to split documents", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "failed to split documents")
		return
	}
	if len(chunks) == 0 {
		writeError(w, http.StatusNotFound, "no documents", "no documents with extractable text found")
		return
	}

	if req.DoReset {
		if err := h.cfg.Chunks.Clear(r.Context()); err != nil {
			h.cfg.Logger.Error("failed to reset chunks", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error", "failed to reset chunks")
			return
		}
	}

	inserted, err := h.cfg.Chunks.Insert(r.Context(), chunks)
	if err != nil {
		h.cfg.Logger.Error("failed to insert chunks", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "failed to insert chunks")
		return
	}

	h.cfg.Logger.Info("chunks inserted", "count", inserted, "documents", len(docs))
	writeJSON(w, http.StatusOK, chunksResponse{Status: "success", InsertedChunks: inserted})
}

// loadDocuments resolves the chunking source. A file_path must be a bare
// stored name inside the document directory, never a relative path.
func (h *IngestHandler) loadDocuments(filePath string) ([]ingest.Document, error) {
	if filePath == "" {
		return h.cfg.Loader.LoadDir(h.cfg.DocumentDir)
	}

	if filePath != filepath.Base(filePath) || strings.Contains(filePath, "..") {
		return nil, &paramError{name: "file_path", value: filePath, want: "a bare stored file name"}
	}

	pages, err := h.cfg.Loader.LoadFile(filepath.Join(h.cfg.DocumentDir, filePath))
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedType) {
			return nil, &paramError{name: "file_path", value: filePath, want: "a supported document type"}
		}
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return []ingest.Document{{Name: filePath, Pages: pages}}, nil
}

type embeddingsResponse struct {
	Status         string `json:"status"`
	EmbeddedChunks int    `json:"embedded_chunks"`
}

// embedBatchSize bounds one embedding call; a whole handbook of chunks in a
// single request would blow past the model's context.
const embedBatchSize = 32

// handleEmbeddings embeds every stored chunk and upserts the vectors into
// the collection, keyed by chunk id so re-runs converge.
func (h *IngestHandler) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	chunks, err := h.cfg.Chunks.All(r.Context())
	if err != nil {
		h.cfg.Logger.Error("failed to read chunks", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "failed to read chunks")
		return
	}
	if len(chunks) == 0 {
		writeError(w, http.StatusNotFound, "no chunks", "chunk the documents before embedding")
		return
	}

	embedded := 0
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := h.cfg.Embedder.EmbedBatch(r.Context(), texts)
		if err != nil {
			h.cfg.Logger.Error("failed to embed chunks", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error", "failed to embed chunks")
			return
		}
		if len(vectors) != len(batch) {
			h.cfg.Logger.Error("embedder returned wrong vector count", "want", len(batch), "got", len(vectors))
			writeError(w, http.StatusInternalServerError, "internal error", "embedder returned wrong vector count")
			return
		}

		for i, c := range batch {
			payload := map[string]any{
				"text":   c.Text,
				"page":   c.Page,
				"source": c.Source,
			}
			if err := h.cfg.Index.Upsert(r.Context(), h.cfg.Collection, c.ID, vectors[i], payload); err != nil {
				h.cfg.Logger.Error("failed to upsert embedding", "chunk_id", c.ID, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error", "failed to store embeddings")
				return
			}
			embedded++
		}
	}

	h.cfg.Logger.Info("chunks embedded", "count", embedded)
	writeJSON(w, http.StatusOK, embeddingsResponse{Status: "success", EmbeddedChunks: embedded})
}
