// Package handler provides HTTP request handlers for the rendezvous API.
//
//   - peers.go: Register, discovery, heartbeat, unsubscribe
//   - subscribe.go: WebSocket subscription fan-out
//   - admin.go: Status summary and snapshot management
//   - health.go: Health and readiness checks
//
// All handlers follow a consistent pattern: parse and validate the
// request, call the registry service, format the response, and map
// domain errors to HTTP status codes.
package handler
