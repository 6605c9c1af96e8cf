// Package api serves the chart pipeline over HTTP.
//
// Routes:
//
//	GET  /health                  build information
//	POST /api/v1/layout           chart input → layout JSON
//	POST /api/v1/render/{format}  chart input → rendered artifact
//
// Request bodies are JSON by default; send Content-Type application/toml
// or an Excel content type to post the other input formats. Failures are
// reported as {"error": ..., "code": ...} with a status derived from the
// error code.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/bullet/pkg/config"
	"github.com/matzehuels/bullet/pkg/pipeline"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// shutdownTimeout is how long in-flight requests get to finish.
const shutdownTimeout = 15 * time.Second

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	runner   *pipeline.Runner
	logger   *log.Logger
	cfg      config.ServerConfig
	defaults pipeline.Options
}

// NewServer creates a server rendering through runner. Render options
// missing from a request fall back to defaults.
func NewServer(runner *pipeline.Runner, logger *log.Logger, cfg config.ServerConfig, defaults pipeline.Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:   runner,
		logger:   logger,
		cfg:      cfg,
		defaults: defaults,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed")
	})

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render/{format}", s.handleRender)
	})

	return r
}
