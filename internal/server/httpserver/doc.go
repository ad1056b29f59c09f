// Package httpserver provides the HTTP/WebSocket server for peermeet.
//
// This package implements the external API using stdlib net/http:
//
//   - Group endpoints: /v1/groups/{key}/peers (register, discovery,
//     NDJSON stream, heartbeat, unsubscribe)
//   - Subscription endpoint: /v1/subscribe (WebSocket fan-out)
//   - Admin endpoints: /admin/v1/status/summary, /admin/v1/snapshots
//   - Health endpoints: /health, /ready, /metrics
//
// Features:
//
//   - Middleware chain: Recover, CORS, RequestID, RateLimit, AccessLog
//   - Configurable client address extraction behind proxies
//   - Graceful shutdown with configurable timeout
//   - Prometheus metrics integration
package httpserver
