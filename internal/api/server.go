package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"lungrisk/internal/api/health"
	"lungrisk/internal/api/middleware"
	"lungrisk/internal/api/rest"
	"lungrisk/internal/metrics"
	"lungrisk/pkg/errors"
	"lungrisk/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	CORSOrigins    []string

	// RateLimitRPS of 0 disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates and configures HTTP server with all routes
func NewServer(cfg ServerConfig, api *rest.Handler, healthHandler *health.Handler, log *logger.Logger) *Server {
	port := 5000
	if cfg.Port > 0 {
		port = cfg.Port
	}

	log.Infof("HTTP server configured on port %d", port)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      NewHandler(cfg, api, healthHandler, log),
			ReadTimeout:  orDefault(cfg.ReadTimeout, 30*time.Second),
			WriteTimeout: orDefault(cfg.WriteTimeout, 60*time.Second),
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// NewHandler builds the routed handler wrapped in the middleware chain.
func NewHandler(cfg ServerConfig, api *rest.Handler, healthHandler *health.Handler, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints (Kubernetes probes)
	healthHandler.Register(mux)

	// Prometheus metrics endpoint
	mux.Handle("GET /metrics", metrics.Handler())

	api.Register(mux)

	chain := []middleware.Middleware{
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		chain = append(chain, middleware.RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)))
		log.Infof("Rate limiting enabled: %.1f req/s, burst %d", cfg.RateLimitRPS, burst)
	}
	if cfg.MaxUploadBytes > 0 {
		chain = append(chain, middleware.RequestSize(cfg.MaxUploadBytes))
	}

	return middleware.Chain(mux, chain...)
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Start begins listening for HTTP requests
// Blocks until server is stopped or encounters an error
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
// Waits for active connections to complete within timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}
