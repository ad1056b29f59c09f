// Package memory provides the in-memory group store for PeerMeet.
//
// Groups live in a capacity-bounded LRU cache with lazy, two-tier
// expiry: the store tracks a per-group deadline (the largest member TTL,
// capped by a global ceiling) while member-level staleness is the
// registry's concern. When the cache is full, the least-recently-touched
// group is evicted wholesale; its members simply disappear on next read.
package memory
