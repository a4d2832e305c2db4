// Package server exposes the journal service as a small JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/journal"
	"github.com/julianstephens/grove/internal/logger"
	"github.com/julianstephens/grove/internal/metrics"
)

type Server struct {
	svc     *journal.Service
	metrics *metrics.Metrics
	timeout time.Duration
	router  chi.Router
}

// New builds the router. A nil metrics disables /metrics and request counters.
func New(svc *journal.Service, m *metrics.Metrics, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	s := &Server{svc: svc, metrics: m, timeout: timeout}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", s.metrics.Handler())

	r.Get("/windows/{kind}", s.handleWindow)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleAddUser)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/health", s.handleHealth)
			r.Get("/streak", s.handleStreak)
			r.Post("/water", s.handleWater)
			r.Put("/coaching/{day}", s.handleAnnotate)
			r.Get("/coaching/{day}", s.handleGetAnnotation)
		})
	})

	r.Post("/entries", s.handlePostEntry)
	r.Patch("/entries/{entryID}", s.handleEditEntry)

	r.Get("/forest", s.handleForest)

	r.Route("/posts/{postID}/cheers", func(r chi.Router) {
		r.Get("/", s.handleListCheers)
		r.Post("/", s.handleCheer)
	})

	r.Put("/goals/{period}", s.handleSetGoal)
	r.Get("/goals/{period}", s.handleGetGoal)

	return r
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	logger.Info("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
