package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWatch_ReceivesUpdates(t *testing.T) {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/subscribe" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub map[string]string
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		if sub["type"] != "subscribe" || sub["hash"] != "g1" {
			t.Errorf("subscribe message = %v", sub)
			return
		}

		conn.WriteJSON(Update{Type: "peers", Peers: []Peer{{PeerID: "p1"}}})
		conn.WriteJSON(Update{Type: "peers", Peers: []Peer{}})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	updates, err := NewClient(srv.URL).Watch(ctx, "g1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	first, ok := <-updates
	if !ok {
		t.Fatal("channel closed before first update")
	}
	if first.Type != "peers" || len(first.Peers) != 1 || first.Peers[0].PeerID != "p1" {
		t.Errorf("first update = %+v", first)
	}

	second, ok := <-updates
	if !ok {
		t.Fatal("channel closed before second update")
	}
	if len(second.Peers) != 0 {
		t.Errorf("second update = %+v, want empty", second)
	}
}

func TestWatch_ChannelClosesWhenServerDrops(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var sub json.RawMessage
		conn.ReadJSON(&sub)
		conn.Close()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	updates, err := NewClient(srv.URL).Watch(ctx, "g1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	select {
	case _, ok := <-updates:
		if ok {
			// Drain until close.
			for range updates {
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel never closed after server dropped")
	}
}

func TestWatch_CancelStopsStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var sub json.RawMessage
		conn.ReadJSON(&sub)
		// Hold the connection open without sending anything.
		conn.ReadJSON(&sub)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := NewClient(srv.URL).Watch(ctx, "g1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cancel()

	select {
	case _, ok := <-updates:
		if ok {
			t.Error("got update after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel never closed after cancel")
	}
}
