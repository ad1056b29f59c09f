// Package handler provides HTTP request handlers for the rendezvous API.
package handler

import (
	"time"

	"github.com/peermeet/peermeet-go/internal/core/domain"
	"github.com/peermeet/peermeet-go/internal/storage/snapshot"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics and the NDJSON
// stream endpoint).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// RegisterPeerRequest is the request body for POST /v1/groups/{key}/peers.
type RegisterPeerRequest struct {
	Name       string            `json:"name"`
	Endpoint   string            `json:"endpoint"`
	TTLSeconds *int64            `json:"ttl_seconds,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	PeerID     string            `json:"peer_id,omitempty"`
}

// RegisterPeerResponse is the response body for POST /v1/groups/{key}/peers.
type RegisterPeerResponse struct {
	PeerID        string `json:"peer_id"`
	TTLSeconds    int64  `json:"ttl_seconds"`
	SourceAddress string `json:"source_address"`
}

// DiscoverResponse is the response body for GET /v1/groups/{key}/peers.
type DiscoverResponse struct {
	Peers []domain.PeerView `json:"peers"`
	Count int               `json:"count"`
}

// StatusSummaryResponse is the response body for GET /admin/v1/status/summary.
type StatusSummaryResponse struct {
	Groups           int `json:"groups"`
	Observers        int `json:"observers"`
	SubscriptionKeys int `json:"subscription_keys"`
}

// SnapshotListResponse is the response body for GET /admin/v1/snapshots.
type SnapshotListResponse struct {
	Snapshots []*snapshot.Info `json:"snapshots"`
}
