package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/peermeet/peermeet-go/internal/core/domain"
)

func member(id string, ttl int64, registeredAt int64) *domain.PeerRecord {
	return &domain.PeerRecord{
		PeerID:       id,
		Name:         "svc-" + id,
		Endpoint:     "http://10.0.0.1:8080",
		TTLSeconds:   ttl,
		RegisteredAt: registeredAt,
	}
}

func TestStore_PutGet(t *testing.T) {
	s := New()
	now := time.Now().UnixMilli()

	s.Put("g1", []*domain.PeerRecord{member("a", 300, now)}, 300)

	got := s.Get("g1")
	if len(got) != 1 || got[0].PeerID != "a" {
		t.Fatalf("Get = %v, want one member a", got)
	}

	if s.Get("missing") != nil {
		t.Error("Get of unknown key should return nil")
	}
}

func TestStore_GetReturnsClones(t *testing.T) {
	s := New()
	now := time.Now().UnixMilli()
	s.Put("g1", []*domain.PeerRecord{member("a", 300, now)}, 300)

	first := s.Get("g1")
	first[0].Name = "mutated"

	second := s.Get("g1")
	if second[0].Name == "mutated" {
		t.Error("Get should return clones, not shared records")
	}
}

func TestStore_PutEmptyDeletes(t *testing.T) {
	s := New()
	now := time.Now().UnixMilli()

	s.Put("g1", []*domain.PeerRecord{member("a", 300, now)}, 300)
	s.Put("g1", nil, 0)

	if s.Get("g1") != nil {
		t.Error("Put with empty members should delete the group")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestStore_GroupExpiry_Lazy(t *testing.T) {
	s := New()
	current := time.Now().UnixMilli()
	s.now = func() int64 { return current }

	s.Put("g1", []*domain.PeerRecord{member("a", 2, current)}, 2)

	if got := s.Get("g1"); len(got) != 1 {
		t.Fatalf("Get before expiry = %v, want one member", got)
	}

	// Advance past the group deadline; the entry expires on next read.
	current += 2001
	if got := s.Get("g1"); got != nil {
		t.Errorf("Get after group deadline = %v, want nil", got)
	}
	if s.Len() != 0 {
		t.Errorf("Len after expiry = %d, want 0", s.Len())
	}
}

func TestStore_GroupTTL_Ceiling(t *testing.T) {
	s := New(WithMaxGroupAge(time.Second))
	current := time.Now().UnixMilli()
	s.now = func() int64 { return current }

	// Member requests an hour; the ceiling caps the group deadline at 1s.
	s.Put("g1", []*domain.PeerRecord{member("a", 3600, current)}, 3600)

	current += 1000
	if got := s.Get("g1"); got != nil {
		t.Errorf("Get past ceiling = %v, want nil", got)
	}
}

func TestStore_CapacityEviction_LRU(t *testing.T) {
	evictions := 0
	s := New(WithCapacity(2), WithEvictionFunc(func() { evictions++ }))
	now := time.Now().UnixMilli()

	s.Put("g1", []*domain.PeerRecord{member("a", 300, now)}, 300)
	s.Put("g2", []*domain.PeerRecord{member("b", 300, now)}, 300)

	// Touch g1 so g2 becomes least recently used.
	s.Get("g1")

	s.Put("g3", []*domain.PeerRecord{member("c", 300, now)}, 300)

	if evictions != 1 {
		t.Errorf("evictions = %d, want 1", evictions)
	}
	if s.Get("g2") != nil {
		t.Error("least-recently-used group g2 should have been evicted")
	}
	if s.Get("g1") == nil || s.Get("g3") == nil {
		t.Error("g1 and g3 should survive the eviction")
	}
}

func TestStore_ExportVerbatim_ImportFilters(t *testing.T) {
	s := New()
	now := time.Now().UnixMilli()

	s.Put("g1", []*domain.PeerRecord{
		member("live", 300, now),
		member("stale", 1, now-60*1000),
	}, 300)
	s.Put("g2", []*domain.PeerRecord{member("gone", 1, now-60*1000)}, 1)

	// Export keeps expired members: filtering happens on load, not save.
	dump := s.Export()
	if len(dump["g1"]) != 2 {
		t.Fatalf("Export g1 = %d members, want 2 (verbatim)", len(dump["g1"]))
	}

	restored := New()
	loaded := restored.Import(dump)
	if loaded != 1 {
		t.Errorf("Import loaded %d groups, want 1", loaded)
	}

	got := restored.Get("g1")
	if len(got) != 1 || got[0].PeerID != "live" {
		t.Errorf("Import g1 = %v, want only live member", got)
	}
	if restored.Get("g2") != nil {
		t.Error("group that filters to empty should be dropped on import")
	}
}

func TestStore_Keys(t *testing.T) {
	s := New()
	now := time.Now().UnixMilli()

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("g%d", i)
		s.Put(key, []*domain.PeerRecord{member(key, 300, now)}, 300)
	}

	keys := s.Keys()
	if len(keys) != 3 {
		t.Errorf("Keys = %v, want 3 keys", keys)
	}
}
