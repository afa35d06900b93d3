// Package api provides the HTTP REST surface for Minerva.
//
// Endpoints:
//
//	GET  /health          liveness probe
//	GET  /ready           readiness probe (database ping)
//	POST /api/upload      store a document upload
//	POST /api/chunks      load, split, and insert document chunks
//	POST /api/embeddings  embed stored chunks into the vector collection
//	POST /api/chat        answer a query through the retrieval pipeline
//	PUT  /api/generator   reconfigure the generation backend
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (recovery, rate limit, logging)
//   - health.go: health check endpoints
//   - ingest.go: upload, chunking, and embedding endpoints
//   - chat.go: query endpoint
//   - generator.go: generator settings endpoint
//   - response.go: JSON response helpers
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8000"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	// Uploads can be large, so this is generous.
	ReadTimeout = 120 * time.Second

	// WriteTimeout is the maximum duration for writing the response. Model
	// generation on CPU can take a while.
	WriteTimeout = 300 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on
	// keep-alive connections.
	IdleTimeout = 120 * time.Second

	// requestsPerSecond caps the sustained request rate across all clients.
	requestsPerSecond = 10

	// requestBurst allows short spikes above the sustained rate.
	requestBurst = 20
)

// Server is the Minerva HTTP server.
type Server struct {
	mux     *http.ServeMux
	limiter *rate.Limiter
}

// ServerConfig carries the handlers mounted on the server.
type ServerConfig struct {
	Health    *HealthHandler
	Ingest    *IngestHandler
	Chat      *ChatHandler
	Generator *GeneratorHandler
}

// NewServer creates a server with all routes registered. Nil handlers are
// skipped, which keeps partial wiring usable in tests.
func NewServer(cfg ServerConfig) *Server {
	mux := http.NewServeMux()

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(mux)
	}
	if cfg.Ingest != nil {
		cfg.Ingest.RegisterRoutes(mux)
	}
	if cfg.Chat != nil {
		cfg.Chat.RegisterRoutes(mux)
	}
	if cfg.Generator != nil {
		cfg.Generator.RegisterRoutes(mux)
	}

	return &Server{
		mux:     mux,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → rate limit → logging → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware, rateLimitMiddleware(s.limiter), loggingMiddleware)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
