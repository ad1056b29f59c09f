package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// envelope mirrors the server's response wrapper.
func envelope(data any) map[string]any {
	return map[string]any{
		"code":    "OK",
		"message": "Success",
		"data":    data,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestNewClient_SchemeDefaulting(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost:7410", "http://localhost:7410"},
		{"http://localhost:7410/", "http://localhost:7410"},
		{"https://meet.example", "https://meet.example"},
	}
	for _, tt := range tests {
		if got := NewClient(tt.in).BaseURL(); got != tt.want {
			t.Errorf("NewClient(%q).BaseURL() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClient_Register(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/groups/g1/peers" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req RegisterRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Name != "svc" {
			t.Errorf("name = %q", req.Name)
		}

		writeJSON(w, http.StatusOK, envelope(RegisterResult{
			PeerID:        "peer-1",
			TTLSeconds:    300,
			SourceAddress: "10.0.0.1:1234",
		}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Register(context.Background(), "g1", &RegisterRequest{Name: "svc"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.PeerID != "peer-1" || result.TTLSeconds != 300 {
		t.Errorf("result = %+v", result)
	}
}

func TestClient_Discover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, envelope(map[string]any{
			"peers": []Peer{{PeerID: "p1", Name: "svc", Age: 12}},
			"count": 1,
		}))
	}))
	defer srv.Close()

	peers, err := NewClient(srv.URL).Discover(context.Background(), "g1")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(peers) != 1 || peers[0].PeerID != "p1" || peers[0].Age != 12 {
		t.Errorf("peers = %+v", peers)
	}
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"code":    "PM-PEER-4040",
			"message": "peer not found",
		})
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Heartbeat(context.Background(), "g1", "ghost")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "PM-PEER-4040") || !strings.Contains(err.Error(), "peer not found") {
		t.Errorf("err = %v", err)
	}
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Heartbeat(context.Background(), "g1", "p1")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("err = %v, want status in message", err)
	}
}

func TestClient_Unsubscribe(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		writeJSON(w, http.StatusOK, envelope(nil))
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Unsubscribe(context.Background(), "g1", "p1"); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if method != http.MethodDelete || path != "/v1/groups/g1/peers/p1" {
		t.Errorf("request = %s %s", method, path)
	}
}

func TestClient_StatusAndSnapshots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/v1/status/summary":
			writeJSON(w, http.StatusOK, envelope(Status{Groups: 3, Observers: 2, SubscriptionKeys: 1}))
		case "/admin/v1/snapshots":
			if r.Method == http.MethodPost {
				writeJSON(w, http.StatusOK, envelope(SnapshotInfo{ID: "snapshot-1", GroupCount: 3}))
				return
			}
			writeJSON(w, http.StatusOK, envelope(map[string]any{
				"snapshots": []SnapshotInfo{{ID: "snapshot-1"}},
			}))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	status, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Groups != 3 {
		t.Errorf("status = %+v", status)
	}

	info, err := c.CreateSnapshot(ctx)
	if err != nil {
		t.Fatalf("CreateSnapshot: %v", err)
	}
	if info.ID != "snapshot-1" {
		t.Errorf("info = %+v", info)
	}

	list, err := c.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("snapshots = %+v", list)
	}
}

func TestClient_GroupKeyEscaping(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		writeJSON(w, http.StatusOK, envelope(map[string]any{"peers": []Peer{}, "count": 0}))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Discover(context.Background(), "key/with spaces"); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if !strings.Contains(path, "key%2Fwith%20spaces") {
		t.Errorf("path = %q, want escaped group key", path)
	}
}
