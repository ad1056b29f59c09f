// Package httpserver provides the HTTP server for the rendezvous API.
package httpserver

import (
	"net/http"

	"github.com/peermeet/peermeet-go/internal/core/registry"
	"github.com/peermeet/peermeet-go/internal/fanout"
	"github.com/peermeet/peermeet-go/internal/server/httpserver/handler"
	"github.com/peermeet/peermeet-go/internal/storage/snapshot"
	"github.com/peermeet/peermeet-go/internal/telemetry/logger"
	"github.com/peermeet/peermeet-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Registry handles peer operations.
	Registry *registry.Service

	// Hub fans membership changes out to subscribed observers.
	Hub *fanout.Hub

	// Snapshots enables the admin snapshot endpoints. Nil disables them.
	Snapshots *snapshot.Manager

	// Exporter supplies registry state for on-demand snapshots.
	Exporter handler.Exporter

	// Metrics records request and registry metrics.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger logger.Logger

	// Address resolves client addresses.
	Address *handler.AddressExtractor

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = allow all).
	CORSAllowedOrigins []string

	// RatePerSecond is the per-client rate limit. Zero disables limiting.
	RatePerSecond float64
	RateBurst     int
}

// NewRouter creates the HTTP handler with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	addr := cfg.Address
	if addr == nil {
		addr = &handler.AddressExtractor{}
	}

	h := handler.New(&handler.Config{
		Registry:  cfg.Registry,
		Hub:       cfg.Hub,
		Snapshots: cfg.Snapshots,
		Exporter:  cfg.Exporter,
		Metrics:   cfg.Metrics,
		Logger:    log,
		Address:   addr,
	})

	// Order: Recover -> CORS -> RequestID -> RateLimit -> AccessLog -> handler.
	middlewares := []Middleware{
		Recover(log),
		CORS(cfg.CORSAllowedOrigins),
		RequestID(),
	}
	if cfg.RatePerSecond > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RatePerSecond, cfg.RateBurst, addr))
	}
	middlewares = append(middlewares, AccessLog(log, cfg.Metrics, addr))

	mainHandler := Chain(h, middlewares...)

	mux := http.NewServeMux()

	// Health and metrics skip rate limiting and access logging.
	probeHandler := Chain(h, Recover(log), RequestID())
	mux.Handle("GET /health", probeHandler)
	mux.Handle("GET /ready", probeHandler)
	mux.Handle("GET /metrics", probeHandler)

	// Group endpoints
	mux.Handle("POST /v1/groups/{key}/peers", mainHandler)
	mux.Handle("GET /v1/groups/{key}/peers", mainHandler)
	mux.Handle("GET /v1/groups/{key}/peers/stream", mainHandler)
	mux.Handle("POST /v1/groups/{key}/peers/{peer_id}/heartbeat", mainHandler)
	mux.Handle("DELETE /v1/groups/{key}/peers/{peer_id}", mainHandler)

	// The WebSocket endpoint skips the access-log wrapper: the
	// connection is long-lived and the hijacked status is meaningless.
	subscribeMiddlewares := []Middleware{Recover(log), RequestID()}
	if cfg.RatePerSecond > 0 {
		subscribeMiddlewares = append(subscribeMiddlewares, RateLimit(cfg.RatePerSecond, cfg.RateBurst, addr))
	}
	mux.Handle("GET /v1/subscribe", Chain(h, subscribeMiddlewares...))

	// Admin endpoints
	mux.Handle("GET /admin/v1/status/summary", mainHandler)
	mux.Handle("POST /admin/v1/snapshots", mainHandler)
	mux.Handle("GET /admin/v1/snapshots", mainHandler)

	return mux
}
