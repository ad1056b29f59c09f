package handler

import (
	"net/http"

	"github.com/peermeet/peermeet-go/internal/core/domain"
)

// Exporter supplies the registry's full state for snapshotting.
// Implemented by storage/memory.Store.
type Exporter interface {
	Export() map[string][]*domain.PeerRecord
}

// handleAdminStatus handles GET /admin/v1/status/summary.
func (h *Handler) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	observers, keys := 0, 0
	if h.hub != nil {
		observers, keys = h.hub.Stats()
	}

	h.writeJSON(w, r, http.StatusOK, StatusSummaryResponse{
		Groups:           h.registry.GroupCount(),
		Observers:        observers,
		SubscriptionKeys: keys,
	})
}

// handleCreateSnapshot handles POST /admin/v1/snapshots.
func (h *Handler) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil || h.exporter == nil {
		h.writeError(w, r, http.StatusBadRequest, "PM-SYS-4000", "snapshot persistence is disabled", nil)
		return
	}

	info, err := h.snapshots.Create(h.exporter.Export())
	if err != nil {
		h.log.Error("snapshot creation failed", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "PM-SYS-5001", "snapshot creation failed", nil)
		return
	}

	h.log.Info("snapshot created", "id", info.ID, "groups", info.GroupCount, "size", info.Size)
	h.writeJSON(w, r, http.StatusOK, info)
}

// handleListSnapshots handles GET /admin/v1/snapshots.
func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		h.writeError(w, r, http.StatusBadRequest, "PM-SYS-4000", "snapshot persistence is disabled", nil)
		return
	}

	infos, err := h.snapshots.List()
	if err != nil {
		h.log.Error("snapshot listing failed", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "PM-SYS-5001", "snapshot listing failed", nil)
		return
	}

	h.writeJSON(w, r, http.StatusOK, SnapshotListResponse{Snapshots: infos})
}
