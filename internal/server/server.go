// Package server provides the HTTP API for Kiroku.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/metrodocs/kiroku/internal/config"
	"github.com/metrodocs/kiroku/internal/models"
	"github.com/metrodocs/kiroku/internal/store"
	"go.uber.org/zap"
)

// BatchSubmitter runs ingestion batches. Satisfied by pipeline.Pipeline.
type BatchSubmitter interface {
	SubmitBatch(ctx context.Context, req *models.BatchRequest) (*models.BatchResult, error)
}

// Server is the HTTP server for the Kiroku API.
type Server struct {
	store     store.Store
	submitter BatchSubmitter
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	st store.Store,
	submitter BatchSubmitter,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		store:     st,
		submitter: submitter,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/batches", s.handleSubmitBatch)
	r.Get("/api/v1/documents", s.handleListDocuments)
	r.Get("/api/v1/documents/recent", s.handleRecentDocuments)
	r.Get("/api/v1/documents/{id}", s.handleGetDocument)
	r.Patch("/api/v1/documents/{id}", s.handleUpdateDocument)
	r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
	r.Post("/api/v1/documents/{id}/comments", s.handleAddComment)
	r.Post("/api/v1/documents/{id}/versions", s.handleAddVersion)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
