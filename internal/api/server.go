// Package api provides the HTTP surface of the yt2g daemon.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/yt2g/internal/api/middleware"
	"github.com/ManuGH/yt2g/internal/config"
	"github.com/ManuGH/yt2g/internal/resolve"
)

// CatalogFetcher supplies the format catalog for a validated video
// identifier. Implemented by invidious.Client.
type CatalogFetcher interface {
	Catalog(ctx context.Context, videoID string) ([]resolve.Format, error)
}

// Server is the HTTP API server.
type Server struct {
	cfg       *config.Holder
	fetcher   CatalogFetcher
	startTime time.Time
}

// New constructs a server over the given config holder and catalog fetcher.
func New(cfg *config.Holder, fetcher CatalogFetcher) *Server {
	return &Server{
		cfg:       cfg,
		fetcher:   fetcher,
		startTime: time.Now(),
	}
}

// Handler builds the router with the canonical middleware stack.
func (s *Server) Handler() http.Handler {
	tracingService := ""
	if s.cfg.Get().Tracing.Enabled {
		tracingService = s.cfg.Get().LogService
	}

	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		CSP:                   middleware.DefaultCSP,
		EnableMetrics:         true,
		TracingService:        tracingService,
		EnableLogging:         true,
	})

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/api/streamurl", s.handleStreamURL)
	r.Get("/api/streammeta", s.handleStreamMeta)

	return r
}
