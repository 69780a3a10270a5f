// Package server is the HTTP front door: it receives alerts, imports models
// and exposes the impact ledger for inspection.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/roach88/sloimpact/internal/alert"
	"github.com/roach88/sloimpact/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

type Server struct {
	Router *chi.Mux
	Port   int

	backend store.Backend
	alerts  *alert.Service
	logger  *slog.Logger
	srv     *http.Server
}

// New creates a server answering from backend and delivering alerts to
// alerts.
func New(port int, backend store.Backend, alerts *alert.Service, logger *slog.Logger) *Server {
	s := &Server{
		Router:  chi.NewRouter(),
		Port:    port,
		backend: backend,
		alerts:  alerts,
		logger:  logger,
	}

	r := s.Router
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "sloimpact")
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/alert", s.handleAlert)
		r.Get("/model", s.handleListModels)
		r.Post("/model", s.handleImportModel)
		r.Get("/model/{architectureID}", s.handleGetModel)
		r.Get("/impacts/{id}/chain", s.handleImpactChain)
		r.Get("/notifications", s.handleListNotifications)
	})
	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", slog.Int("port", s.Port))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		return s.srv.Shutdown(shutdownCtx)
	}
}

// TimeoutMiddleware cancels the request context after timeout. Handlers
// stop cooperatively through their collaborators.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
