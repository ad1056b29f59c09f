package handler

import (
	"encoding/json"
	"net/http"

	"github.com/peermeet/peermeet-go/internal/core/registry"
	"github.com/peermeet/peermeet-go/internal/telemetry/logger"
)

// handleRegister handles POST /v1/groups/{key}/peers.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	groupKey := r.PathValue("key")

	var req RegisterPeerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "PM-SYS-4000", "invalid request body", nil)
		return
	}

	resp, err := h.registry.Register(r.Context(), &registry.RegisterRequest{
		GroupKey:      groupKey,
		Name:          req.Name,
		Endpoint:      req.Endpoint,
		TTLSeconds:    req.TTLSeconds,
		Metadata:      req.Metadata,
		PeerID:        req.PeerID,
		SourceAddress: h.addr.ClientAddr(r),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.log.Debug("peer registered",
		"group", logger.KeyFingerprint(groupKey),
		"peer_id", resp.PeerID,
		"ttl_seconds", resp.TTLSeconds,
	)

	h.writeJSON(w, r, http.StatusOK, RegisterPeerResponse{
		PeerID:        resp.PeerID,
		TTLSeconds:    resp.TTLSeconds,
		SourceAddress: resp.SourceAddress,
	})
}

// handleDiscover handles GET /v1/groups/{key}/peers.
func (h *Handler) handleDiscover(w http.ResponseWriter, r *http.Request) {
	groupKey := r.PathValue("key")

	views := h.registry.Discover(r.Context(), groupKey)

	h.writeJSON(w, r, http.StatusOK, DiscoverResponse{
		Peers: views,
		Count: len(views),
	})
}

// handleDiscoverStream handles GET /v1/groups/{key}/peers/stream.
// It writes one peer JSON object per line so large groups stream
// without buffering the whole result.
func (h *Handler) handleDiscoverStream(w http.ResponseWriter, r *http.Request) {
	groupKey := r.PathValue("key")

	views := h.registry.Discover(r.Context(), groupKey)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for _, view := range views {
		if err := enc.Encode(view); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// handleHeartbeat handles POST /v1/groups/{key}/peers/{peer_id}/heartbeat.
func (h *Handler) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	groupKey := r.PathValue("key")
	peerID := r.PathValue("peer_id")

	if err := h.registry.Heartbeat(r.Context(), groupKey, peerID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, nil)
}

// handleUnsubscribe handles DELETE /v1/groups/{key}/peers/{peer_id}.
func (h *Handler) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	groupKey := r.PathValue("key")
	peerID := r.PathValue("peer_id")

	if err := h.registry.Unsubscribe(r.Context(), groupKey, peerID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, nil)
}
