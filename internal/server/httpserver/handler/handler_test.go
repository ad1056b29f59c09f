package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/peermeet/peermeet-go/internal/core/registry"
	"github.com/peermeet/peermeet-go/internal/fanout"
	"github.com/peermeet/peermeet-go/internal/storage/memory"
	"github.com/peermeet/peermeet-go/internal/telemetry/logger"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()

	log, err := logger.New(logger.Config{Level: "error", Format: "json", Output: io.Discard})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	store := memory.New()
	hub := fanout.NewHub()
	return New(&Config{
		Registry: registry.NewService(store, registry.WithNotifier(hub)),
		Hub:      hub,
		Logger:   log,
	})
}

func TestCreateSnapshot_DisabledIs400(t *testing.T) {
	h := newHandler(t) // no Snapshots manager wired

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/admin/v1/snapshots", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "PM-SYS-4000" {
		t.Errorf("X-Error-Code = %q, want PM-SYS-4000", got)
	}
}

func TestListSnapshots_DisabledIs400(t *testing.T) {
	h := newHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/v1/snapshots", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRegister_MalformedBody(t *testing.T) {
	h := newHandler(t)

	req := httptest.NewRequest("POST", "/v1/groups/g/peers", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"PM-PEER-4040", http.StatusNotFound},
		{"PM-GRP-4040", http.StatusNotFound},
		{"PM-PEER-4001", http.StatusBadRequest},
		{"PM-SYS-4000", http.StatusBadRequest},
		{"PM-SYS-4290", http.StatusTooManyRequests},
		{"PM-SYS-5000", http.StatusInternalServerError},
		{"PM-SYS-5001", http.StatusInternalServerError},
		{"PM-XXX-9999", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("errorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
