// Package main provides the entry point for peermeet-server.
//
// The server is the peermeet rendezvous service that provides:
//
//   - HTTP/HTTPS API for peer registration and discovery
//   - WebSocket subscriptions with membership fan-out
//   - Snapshot persistence for restart survival
//   - Prometheus metrics and health probes
//
// Usage:
//
//	peermeet-server [flags]
//	peermeet-server --config /path/to/config.yaml
//
// The server loads configuration, initializes infrastructure
// components, and starts the configured listener.
package main
