// Package http exposes upload, query and health endpoints.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arbor-labs/docqa-core/internal/core/ports/driven"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	ingestService driving.IngestService
	queryService  driving.QueryService

	// Infrastructure
	taskQueue driven.TaskQueue // nil means uploads are ingested synchronously
	db        Pinger

	collection     string
	maxUploadBytes int64
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	Collection     string
	MaxUploadBytes int64
	AllowedOrigins []string
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		MaxUploadBytes: 32 << 20, // 32 MiB
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server.
// When taskQueue is nil, uploads are ingested synchronously in the
// request; otherwise they are enqueued for a background worker.
func NewServer(
	cfg Config,
	ingestService driving.IngestService,
	queryService driving.QueryService,
	taskQueue driven.TaskQueue,
	db Pinger,
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}

	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		logger:         logger,
		ingestService:  ingestService,
		queryService:   queryService,
		taskQueue:      taskQueue,
		db:             db,
		collection:     cfg.Collection,
		maxUploadBytes: maxUploadBytes,
	}

	s.setupRoutes()

	logging := NewLoggingMiddleware(logger)
	recovery := NewRecoveryMiddleware(logger)
	cors := NewCORSMiddleware(cfg.AllowedOrigins)

	handler := recovery.Handler(cors.Handler(logging.Handler(s.router)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Document endpoints
	s.router.HandleFunc("POST /api/v1/documents", s.handleUploadDocument)

	// Query endpoints
	s.router.HandleFunc("POST /api/v1/query", s.handleQuery)
	s.router.HandleFunc("POST /api/v1/retrieve", s.handleRetrieve)
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
