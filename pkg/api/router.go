// Package api wires the collector's HTTP surface: the Submit Handler and
// the health probes, behind the same chi middleware stack the teacher
// repo uses for its own API server.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mozilla-services/antenna/internal/logger"
	"github.com/mozilla-services/antenna/pkg/api/handlers"
)

// NewRouter builds the collector's chi router.
//
// Routes:
//   - POST /submit             — crash submission, §4.7
//   - GET  /__lbheartbeat__    — load-balancer probe, §4.8
//   - GET  /__heartbeat__      — dependency health, §4.8
//   - GET  /__version__        — build identity, §4.8
//   - GET  /__broken__         — deliberate 500 for wiring verification, §4.8
//   - GET  /metrics            — Prometheus scrape endpoint, when metricsHandler is non-nil
func NewRouter(submit *handlers.SubmitHandler, health *handlers.HealthHandler, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/submit", submit.ServeHTTP)

	r.Get("/__lbheartbeat__", health.LBHeartbeat)
	r.Get("/__heartbeat__", health.Heartbeat)
	r.Get("/__version__", health.Version)
	r.Get("/__broken__", health.Broken)

	if metricsHandler != nil {
		r.Get("/metrics", metricsHandler.ServeHTTP)
	}

	return r
}

// requestLogger logs request start at Debug and completion at Info,
// mirroring the teacher's pkg/api/router.go convention.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
