package memory

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/peermeet/peermeet-go/internal/core/domain"
)

// Defaults for the bounded store.
const (
	DefaultCapacity    = 10000
	DefaultMaxGroupAge = 24 * time.Hour
)

// group is one cache entry: the member list plus the group-level
// deadline (Unix milliseconds).
type group struct {
	members   []*domain.PeerRecord
	expiresAt int64
}

// Store is a capacity-bounded mapping from group key to member list.
type Store struct {
	groups *lru.Cache[string, *group]

	maxGroupAge time.Duration
	onEvict     func()

	// now is swappable for tests.
	now func() int64
}

// Option configures the Store.
type Option func(*Store)

// WithCapacity sets the maximum number of group entries.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.groups.Resize(n)
		}
	}
}

// WithMaxGroupAge caps the group-level TTL regardless of member TTLs.
func WithMaxGroupAge(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.maxGroupAge = d
		}
	}
}

// WithEvictionFunc registers a callback invoked once per group evicted
// under capacity pressure.
func WithEvictionFunc(fn func()) Option {
	return func(s *Store) {
		s.onEvict = fn
	}
}

// New creates a new bounded group store.
func New(opts ...Option) *Store {
	cache, err := lru.New[string, *group](DefaultCapacity)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}

	s := &Store{
		groups:      cache,
		maxGroupAge: DefaultMaxGroupAge,
		now:         func() int64 { return time.Now().UnixMilli() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the member list for a group, or nil if the group is
// absent or past its group-level deadline. Expired entries are removed
// on the spot. Members are cloned; callers may mutate freely.
func (s *Store) Get(key string) []*domain.PeerRecord {
	g, ok := s.groups.Get(key)
	if !ok {
		return nil
	}
	if s.now() >= g.expiresAt {
		s.groups.Remove(key)
		return nil
	}
	return cloneMembers(g.members)
}

// Put replaces a group's member list and resets its deadline to
// now + min(ttl, ceiling). An empty member list deletes the group: the
// store never holds an empty group. An unrelated group may be evicted
// if the insert exceeds capacity.
func (s *Store) Put(key string, members []*domain.PeerRecord, ttlSeconds int64) {
	if len(members) == 0 {
		s.Delete(key)
		return
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttl > s.maxGroupAge {
		ttl = s.maxGroupAge
	}

	g := &group{
		members:   cloneMembers(members),
		expiresAt: s.now() + ttl.Milliseconds(),
	}

	if evicted := s.groups.Add(key, g); evicted && s.onEvict != nil {
		s.onEvict()
	}
}

// Delete removes a group. It reports whether the group was present.
func (s *Store) Delete(key string) bool {
	return s.groups.Remove(key)
}

// Len returns the number of stored groups that are inside their
// group-level deadline.
func (s *Store) Len() int {
	return len(s.Keys())
}

// Keys returns the keys of all groups inside their group-level deadline.
func (s *Store) Keys() []string {
	now := s.now()
	keys := make([]string, 0, s.groups.Len())
	for _, k := range s.groups.Keys() {
		if g, ok := s.groups.Peek(k); ok && now < g.expiresAt {
			keys = append(keys, k)
		}
	}
	return keys
}

// Export enumerates every stored group verbatim, expired members
// included. Used for snapshot creation; filtering happens on load,
// never on save.
func (s *Store) Export() map[string][]*domain.PeerRecord {
	out := make(map[string][]*domain.PeerRecord, s.groups.Len())
	for _, k := range s.groups.Keys() {
		if g, ok := s.groups.Peek(k); ok {
			out[k] = cloneMembers(g.members)
		}
	}
	return out
}

// Import bulk-loads groups, applying the expiration filter to each.
// Groups that filter to empty are dropped. Returns the number of
// groups loaded.
func (s *Store) Import(groups map[string][]*domain.PeerRecord) int {
	now := s.now()
	loaded := 0
	for key, members := range groups {
		alive := domain.FilterAlive(now, members)
		if len(alive) == 0 {
			continue
		}
		s.Put(key, alive, domain.MaxTTLSeconds(alive))
		loaded++
	}
	return loaded
}

func cloneMembers(members []*domain.PeerRecord) []*domain.PeerRecord {
	out := make([]*domain.PeerRecord, len(members))
	for i, m := range members {
		out[i] = m.Clone()
	}
	return out
}
