// Package server provides the HTTP API for surveyrag.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/config"
	"github.com/hyperjump/surveyrag/internal/models"
	"github.com/hyperjump/surveyrag/internal/search"
)

// QueryHandler answers one question.
type QueryHandler interface {
	Handle(ctx context.Context, question models.Question) mo.Result[*models.Answer]
}

// Server is the HTTP server for the surveyrag API.
type Server struct {
	pipeline    QueryHandler
	search      search.Service
	collections []config.CollectionConfig
	config      *config.ServerConfig
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies. svc is only used to report
// collection sizes and may be nil.
func NewServer(
	pipeline QueryHandler,
	svc search.Service,
	collections []config.CollectionConfig,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline:    pipeline,
		search:      svc,
		collections: collections,
		config:      cfg,
		logger:      logger,
	}
}

// Handler returns the routed HTTP handler with middleware and CORS applied.
func (s *Server) Handler() http.Handler {
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Get("/query", s.handleLegacyQuery)
	r.Get("/query/", s.handleLegacyQuery)
	r.Post("/api/v1/query", s.handleQuery)
	r.Get("/api/v1/collections", s.handleCollections)
	r.Get("/health", s.handleHealth)

	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
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
