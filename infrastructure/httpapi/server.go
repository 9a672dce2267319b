// Package httpapi exposes the scorer over HTTP.
package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahrav/go-signalhunt/internal/application"
	"github.com/ahrav/go-signalhunt/internal/ports"
	"github.com/ahrav/go-signalhunt/internal/scoring"
)

// RequestTimeout bounds the handling time of any single request.
const RequestTimeout = 30 * time.Second

// Config wires the router's collaborators. Scorer is required; everything
// else has a usable zero value.
type Config struct {
	Scorer *scoring.Scorer
	Server application.ServerConfig
	// Gatherer backs GET /metrics; nil leaves the route unmounted.
	Gatherer prometheus.Gatherer
	Metrics  ports.MetricsCollector
	Logger   *slog.Logger
}

// NewRouter builds the HTTP handler for the scoring API.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	server := cfg.Server.WithDefaults()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(logger, metrics), middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	if len(server.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"Content-Length", "Retry-After"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(vr chi.Router) {
		vr.Get("/categories", CategoriesHandler(cfg.Scorer.Rules()))

		score := ScoreHandler(cfg.Scorer, server.MaxRows)
		if server.RequestsPerSecond > 0 {
			limiter := NewClientLimiter(server.RequestsPerSecond, server.Burst)
			vr.With(limiter.Middleware).Post("/score", score)
		} else {
			vr.Post("/score", score)
		}
	})

	return r
}

// NewServer wraps the router in an http.Server bound to the configured
// listen address.
func NewServer(cfg Config) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.WithDefaults().Listen,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
