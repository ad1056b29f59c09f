// Package handler provides HTTP request handlers for the rendezvous API.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/peermeet/peermeet-go/internal/core/domain"
	"github.com/peermeet/peermeet-go/internal/core/registry"
	"github.com/peermeet/peermeet-go/internal/fanout"
	"github.com/peermeet/peermeet-go/internal/storage/snapshot"
	"github.com/peermeet/peermeet-go/internal/telemetry/logger"
	"github.com/peermeet/peermeet-go/internal/telemetry/metric"
)

// Config wires the handler's collaborators.
type Config struct {
	Registry *registry.Service
	Hub      *fanout.Hub

	// Snapshots enables the admin snapshot endpoints. Nil disables them.
	Snapshots *snapshot.Manager

	// Exporter supplies registry state for on-demand snapshots.
	Exporter Exporter

	Metrics *metric.Registry
	Logger  logger.Logger

	// Address resolves the client address used as a peer's
	// source_address and for logging.
	Address *AddressExtractor
}

// Handler routes requests to the endpoint handlers.
type Handler struct {
	registry  *registry.Service
	hub       *fanout.Hub
	snapshots *snapshot.Manager
	exporter  Exporter
	metrics   *metric.Registry
	log       logger.Logger
	addr      *AddressExtractor
	mux       *http.ServeMux
}

// New creates a new Handler with the given collaborators.
func New(cfg *Config) *Handler {
	h := &Handler{
		registry:  cfg.Registry,
		hub:       cfg.Hub,
		snapshots: cfg.Snapshots,
		exporter:  cfg.Exporter,
		metrics:   cfg.Metrics,
		log:       cfg.Logger,
		addr:      cfg.Address,
		mux:       http.NewServeMux(),
	}
	if h.log == nil {
		h.log = logger.Default()
	}
	if h.addr == nil {
		h.addr = &AddressExtractor{}
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	// Health endpoints
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	// Metrics
	h.mux.Handle("GET /metrics", h.metrics.Handler())

	// Group endpoints
	h.mux.HandleFunc("POST /v1/groups/{key}/peers", h.handleRegister)
	h.mux.HandleFunc("GET /v1/groups/{key}/peers", h.handleDiscover)
	h.mux.HandleFunc("GET /v1/groups/{key}/peers/stream", h.handleDiscoverStream)
	h.mux.HandleFunc("POST /v1/groups/{key}/peers/{peer_id}/heartbeat", h.handleHeartbeat)
	h.mux.HandleFunc("DELETE /v1/groups/{key}/peers/{peer_id}", h.handleUnsubscribe)

	// Subscription endpoint
	h.mux.HandleFunc("GET /v1/subscribe", h.handleSubscribe)

	// Admin endpoints
	h.mux.HandleFunc("GET /admin/v1/status/summary", h.handleAdminStatus)
	h.mux.HandleFunc("POST /admin/v1/snapshots", h.handleCreateSnapshot)
	h.mux.HandleFunc("GET /admin/v1/snapshots", h.handleListSnapshots)
}

// writeJSON writes a JSON response with the standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with the standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// getRequestID extracts the request ID set by the middleware.
func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsDomainError(err, "") {
		code := domain.GetErrorCode(err)
		h.writeError(w, r, errorCodeToHTTPStatus(code), code, err.Error(), nil)
		return
	}

	h.log.Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, "PM-SYS-5000", "internal server error", nil)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4001"), strings.HasSuffix(code, "-4000"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "PM-SYS-5"):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
