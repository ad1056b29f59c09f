package fanout

import (
	"errors"
	"sync"
	"testing"

	"github.com/peermeet/peermeet-go/internal/core/domain"
)

// stubObserver records updates; fail makes every Send error.
type stubObserver struct {
	id   string
	fail bool

	mu      sync.Mutex
	updates []Update
}

func (o *stubObserver) ID() string { return o.id }

func (o *stubObserver) Send(u Update) error {
	if o.fail {
		return errors.New("broken pipe")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updates = append(o.updates, u)
	return nil
}

func (o *stubObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.updates)
}

func views(ids ...string) []domain.PeerView {
	out := make([]domain.PeerView, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.PeerView{PeerID: id})
	}
	return out
}

func TestHub_PublishReachesSubscribers(t *testing.T) {
	h := NewHub()
	a := &stubObserver{id: "a"}
	b := &stubObserver{id: "b"}

	h.Subscribe(a, "g1")
	h.Subscribe(b, "g1")
	h.Publish("g1", views("p1"))

	if a.count() != 1 || b.count() != 1 {
		t.Errorf("updates: a=%d b=%d, want 1 each", a.count(), b.count())
	}
	if got := a.updates[0]; got.Type != UpdateTypePeers || len(got.Peers) != 1 {
		t.Errorf("update = %+v, want peers update with one peer", got)
	}
}

func TestHub_PublishSkipsOtherKeys(t *testing.T) {
	h := NewHub()
	a := &stubObserver{id: "a"}
	h.Subscribe(a, "g1")

	h.Publish("g2", views("p1"))

	if a.count() != 0 {
		t.Errorf("observer of g1 received %d updates for g2", a.count())
	}
}

func TestHub_ResubscribeMovesObserver(t *testing.T) {
	h := NewHub()
	a := &stubObserver{id: "a"}

	h.Subscribe(a, "g1")
	h.Subscribe(a, "g2")

	if key, _ := h.KeyOf("a"); key != "g2" {
		t.Errorf("KeyOf = %q, want g2", key)
	}

	h.Publish("g1", views("p1"))
	if a.count() != 0 {
		t.Error("observer should no longer receive g1 updates after moving to g2")
	}

	observers, keys := h.Stats()
	if observers != 1 || keys != 1 {
		t.Errorf("Stats = (%d, %d), want (1, 1)", observers, keys)
	}
}

func TestHub_UnsubscribeCleansEmptyKey(t *testing.T) {
	h := NewHub()
	a := &stubObserver{id: "a"}
	h.Subscribe(a, "g1")
	h.Unsubscribe("a")

	observers, keys := h.Stats()
	if observers != 0 || keys != 0 {
		t.Errorf("Stats = (%d, %d), want (0, 0)", observers, keys)
	}

	// Unknown observer is a no-op.
	h.Unsubscribe("ghost")
}

func TestHub_BrokenObserverDropped(t *testing.T) {
	var dropped []string
	h := NewHub(WithDropFunc(func(id string) { dropped = append(dropped, id) }))

	good := &stubObserver{id: "good"}
	bad := &stubObserver{id: "bad", fail: true}
	h.Subscribe(good, "g1")
	h.Subscribe(bad, "g1")

	h.Publish("g1", views("p1"))

	if good.count() != 1 {
		t.Error("healthy observer should still receive the update")
	}
	if observers, _ := h.Stats(); observers != 1 {
		t.Errorf("observers = %d after drop, want 1", observers)
	}
	if len(dropped) != 1 || dropped[0] != "bad" {
		t.Errorf("dropped = %v, want [bad]", dropped)
	}
}

func TestNewUpdate_EmptyPeersNotNil(t *testing.T) {
	u := NewUpdate(nil)
	if u.Peers == nil {
		t.Error("NewUpdate(nil) should carry an empty, non-nil peer list")
	}
}
