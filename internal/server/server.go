// Package server provides the development HTTP server: it serves the
// rendered site and exposes the latest build report.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/healthai/sitegen/internal/build"
	"github.com/healthai/sitegen/internal/config"
)

// Server serves the output directory plus a small status API.
type Server struct {
	config  *config.ServerConfig
	distDir string
	logger  *zap.Logger
	server  *http.Server

	mu     sync.RWMutex
	report *build.Report
}

// NewServer creates a server over distDir.
func NewServer(cfg *config.ServerConfig, distDir string, logger *zap.Logger) *Server {
	return &Server{config: cfg, distDir: distDir, logger: logger}
}

// SetReport publishes the most recent build report. Safe to call while the
// server is running; watch mode calls it after every rebuild.
func (s *Server) SetReport(r *build.Report) {
	s.mu.Lock()
	s.report = r
	s.mu.Unlock()
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/v1/report", s.handleReport)
	r.Get("/*", s.handleStatic)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr), zap.String("dist", s.distDir))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
