// Package server exposes the operational HTTP endpoints (health and
// Prometheus metrics) for long scrape runs.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bitbash-dev/tiktok-comments/internal/metrics"
)

// New returns an http.Server serving /healthz and /metrics on addr.
func New(addr string, logger *zap.Logger) *http.Server {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Warn("write health response failed", zap.Error(err))
		}
	})
	router.Handle("/metrics", metrics.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
