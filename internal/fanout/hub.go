package fanout

import (
	"sync"

	"github.com/peermeet/peermeet-go/internal/core/domain"
)

// Update is one push to an observer: the full filtered view of the
// group the observer is subscribed to.
type Update struct {
	Type  string            `json:"type"`
	Peers []domain.PeerView `json:"peers"`
}

// UpdateTypePeers is the only update type currently pushed.
const UpdateTypePeers = "peers"

// NewUpdate builds a peers update from a filtered view.
func NewUpdate(peers []domain.PeerView) Update {
	if peers == nil {
		peers = []domain.PeerView{}
	}
	return Update{Type: UpdateTypePeers, Peers: peers}
}

/// Observer is one subscribed client. Send must not block: it enqueues
// the update or fails immediately. A Send error marks the observer
// broken and the hub detaches it.
type Observer interface {
	ID() string
	Send(Update) error
}

// Hub tracks which observers watch which group key.
//
// An observer watches exactly one key at a time; subscribing to a new
// key implicitly leaves the previous one.
type Hub struct {
	mu     sync.RWMutex
	byKey  map[string]map[string]Observer // groupKey -> observerID -> observer
	keyOf  map[string]string              // observerID -> groupKey
	onDrop func(id string)
}

// Option configures the Hub.
type Option func(*Hub)

// WithDropFunc registers a callback invoked with the ID of every
// observer the hub detaches after a failed Send.
func WithDropFunc(fn func(id string)) Option {
	return func(h *Hub) {
		h.onDrop = fn
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		byKey: make(map[string]map[string]Observer),
		keyOf: make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe attaches the observer to a group key, detaching it from
// any previous key first. The caller is responsible for the immediate
// catch-up push.
func (h *Hub) Subscribe(obs Observer, groupKey string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detachLocked(obs.ID())

	set, ok := h.byKey[groupKey]
	if !ok {
		set = make(map[string]Observer)
		h.byKey[groupKey] = set
	}
	set[obs.ID()] = obs
	h.keyOf[obs.ID()] = groupKey
}

// Unsubscribe detaches the observer from whatever key it watches.
// Detaching an unknown observer is a no-op.
func (h *Hub) Unsubscribe(observerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(observerID)
}

// detachLocked removes the observer from its current key, deleting the
// key's set when it empties. Caller holds h.mu.
func (h *Hub) detachLocked(observerID string) {
	key, ok := h.keyOf[observerID]
	if !ok {
		return
	}
	delete(h.keyOf, observerID)
	if set, ok := h.byKey[key]; ok {
		delete(set, observerID)
		if len(set) == 0 {
			delete(h.byKey, key)
		}
	}
}

// Publish pushes the view to every live observer of the key. Each
// observer fails independently; a failed Send detaches that observer
// without delaying the others or the caller.
func (h *Hub) Publish(groupKey string, peers []domain.PeerView) {
	update := NewUpdate(peers)

	h.mu.RLock()
	set := h.byKey[groupKey]
	observers := make([]Observer, 0, len(set))
	for _, obs := range set {
		observers = append(observers, obs)
	}
	h.mu.RUnlock()

	var broken []string
	for _, obs := range observers {
		if err := obs.Send(update); err != nil {
			broken = append(broken, obs.ID())
		}
	}

	for _, id := range broken {
		h.Unsubscribe(id)
		if h.onDrop != nil {
			h.onDrop(id)
		}
	}
}

// Stats returns the live observer count and the subscribed-key count.
func (h *Hub) Stats() (observers, keys int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.keyOf), len(h.byKey)
}

// KeyOf returns the group key an observer currently watches.
func (h *Hub) KeyOf(observerID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	key, ok := h.keyOf[observerID]
	return key, ok
}
