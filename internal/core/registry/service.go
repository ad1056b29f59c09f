package registry

import (
	"context"
	"time"

	"github.com/peermeet/peermeet-go/internal/core/domain"
	"github.com/peermeet/peermeet-go/internal/telemetry/metric"
	"github.com/peermeet/peermeet-go/pkg/keymutex"
)

// GroupStore is the bounded storage the service mutates. Implemented
// by storage/memory.Store.
type GroupStore interface {
	// Get returns the group's members, or nil when absent/expired.
	Get(key string) []*domain.PeerRecord

	// Put replaces the member list and resets the group deadline to
	// min(ttl, ceiling). Empty members deletes the group.
	Put(key string, members []*domain.PeerRecord, ttlSeconds int64)

	// Delete removes a group.
	Delete(key string) bool

	// Len returns the number of live groups.
	Len() int
}

// Notifier receives the recomputed filtered view after every effective
// membership change. Implemented by fanout.Hub.
type Notifier interface {
	Publish(groupKey string, peers []domain.PeerView)
}

// Service implements the mutation protocol over a GroupStore.
type Service struct {
	store    GroupStore
	notifier Notifier
	metrics  *metric.Registry
	locks    *keymutex.KeyMutex

	// now is swappable for tests.
	now func() int64
}

// Option configures the Service.
type Option func(*Service)

// WithNotifier sets the fan-out target for membership changes.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithMetrics sets the metrics registry. Nil is valid.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a registry service over the given store.
func NewService(store GroupStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		locks: keymutex.New(),
		now:   func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest contains the validated inputs of a register call.
type RegisterRequest struct {
	GroupKey string

	Name       string
	Endpoint   string
	TTLSeconds *int64 // nil means the default TTL
	Metadata   map[string]string
	PeerID     string // optional, used verbatim when set

	SourceAddress string
}

// RegisterResponse is the result of a register call.
type RegisterResponse struct {
	PeerID        string
	TTLSeconds    int64
	SourceAddress string
}

// Register announces a peer into a group, upserting on peer ID. It
// refreshes RegisteredAt, recomputes the group TTL as the largest
// member TTL, writes back, and fans the new filtered view out to
// subscribers.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if req.GroupKey == "" {
		return nil, domain.ErrPeerValidation.WithDetails("group key is required")
	}

	ttl := int64(domain.DefaultTTLSeconds)
	if req.TTLSeconds != nil {
		ttl = *req.TTLSeconds
	}

	record := &domain.PeerRecord{
		PeerID:        ResolvePeerID(req.PeerID, req.Name, req.Endpoint, req.SourceAddress),
		Name:          req.Name,
		Endpoint:      req.Endpoint,
		TTLSeconds:    ttl,
		Metadata:      req.Metadata,
		SourceAddress: req.SourceAddress,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	s.locks.Lock(req.GroupKey)
	defer s.locks.Unlock(req.GroupKey)

	now := s.now()
	record.RegisteredAt = now

	members := s.store.Get(req.GroupKey)
	members = removePeer(members, record.PeerID)
	members = append(members, record)

	s.store.Put(req.GroupKey, members, domain.MaxTTLSeconds(members))
	s.metrics.IncRegister()

	s.publish(req.GroupKey, now, members)

	return &RegisterResponse{
		PeerID:        record.PeerID,
		TTLSeconds:    record.TTLSeconds,
		SourceAddress: record.SourceAddress,
	}, nil
}

// Heartbeat refreshes a member's RegisteredAt. A missing member is a
// legitimate not-found: the peer may have raced its own expiry or a
// prior unsubscribe. Heartbeat never fans out; the only visible change
// is age, which recomputes on every read anyway.
func (s *Service) Heartbeat(ctx context.Context, groupKey, peerID string) error {
	s.locks.Lock(groupKey)
	defer s.locks.Unlock(groupKey)

	members := s.store.Get(groupKey)
	target := findPeer(members, peerID)
	if target == nil {
		return domain.ErrPeerNotFound.WithDetails("peer_id=" + peerID)
	}

	target.Touch(s.now())
	s.store.Put(groupKey, members, domain.MaxTTLSeconds(members))
	s.metrics.IncHeartbeat()
	return nil
}

// Unsubscribe removes a member from a group. Removing an absent member
// is a no-op, not an error. The group is deleted once its last member
// leaves. Fan-out always fires, even on a no-op, so subscribers stay
// synchronized.
func (s *Service) Unsubscribe(ctx context.Context, groupKey, peerID string) error {
	s.locks.Lock(groupKey)
	defer s.locks.Unlock(groupKey)

	members := s.store.Get(groupKey)
	members = removePeer(members, peerID)

	// Put deletes the group when members is empty.
	s.store.Put(groupKey, members, domain.MaxTTLSeconds(members))
	s.metrics.IncUnsubscribe()

	s.publish(groupKey, s.now(), members)
	return nil
}

// Discover returns the group's current filtered view. When filtering
// pruned anyone, the pruned list is written back (or the group deleted)
// and fan-out fires, so subscribers never see a staler view than a
// concurrent poller.
func (s *Service) Discover(ctx context.Context, groupKey string) []domain.PeerView {
	s.locks.Lock(groupKey)
	defer s.locks.Unlock(groupKey)

	now := s.now()
	members := s.store.Get(groupKey)
	alive := domain.FilterAlive(now, members)

	if pruned := len(members) - len(alive); pruned > 0 {
		s.store.Put(groupKey, alive, domain.MaxTTLSeconds(alive))
		s.metrics.AddMembersExpired(pruned)
		s.publishFiltered(groupKey, now, alive)
	}

	s.metrics.IncDiscovery()
	return domain.Views(now, alive)
}

// GroupCount returns the number of live groups, for introspection.
func (s *Service) GroupCount() int {
	return s.store.Len()
}

// publish filters members and pushes the resulting view.
func (s *Service) publish(groupKey string, now int64, members []*domain.PeerRecord) {
	s.publishFiltered(groupKey, now, domain.FilterAlive(now, members))
}

func (s *Service) publishFiltered(groupKey string, now int64, alive []*domain.PeerRecord) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(groupKey, domain.Views(now, alive))
}

func removePeer(members []*domain.PeerRecord, peerID string) []*domain.PeerRecord {
	out := members[:0]
	for _, m := range members {
		if m.PeerID != peerID {
			out = append(out, m)
		}
	}
	return out
}

func findPeer(members []*domain.PeerRecord, peerID string) *domain.PeerRecord {
	for _, m := range members {
		if m.PeerID == peerID {
			return m
		}
	}
	return nil
}
