package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/logger"
)

// logRequests records each request once the handler has finished.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)

		s.metrics.RequestServed(route, r.Method, strconv.Itoa(status), elapsed.Seconds())
		logger.Info("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
			"user", r.Header.Get(constants.UserHeader),
		)
	})
}

// actor is the acting user. Authentication happens upstream of grove.
func actor(r *http.Request) string {
	return r.Header.Get(constants.UserHeader)
}
