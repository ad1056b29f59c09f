package domain

import (
	"strings"
	"time"
)

// Peer constraints.
const (
	// DefaultTTLSeconds is the member TTL applied when a register
	// request does not declare one.
	DefaultTTLSeconds = 300

	MaxNameLength     = 256
	MaxEndpointLength = 2048
	MaxPeerIDLength   = 128
	MaxMetadataKeys   = 64
	MaxMetadataKeyLen = 128
	MaxMetadataValLen = 1024
)

// PeerRecord is one peer's announced presence within a group.
//
// Timestamps are Unix milliseconds; TTLSeconds is whole seconds. A
// record is stale once now - RegisteredAt >= TTLSeconds * 1000.
type PeerRecord struct {
	// PeerID is the stable identifier, unique within its group.
	// A register with a colliding PeerID replaces the prior record.
	PeerID string `json:"peer_id"`

	// Name is the peer's declared name.
	Name string `json:"name"`

	// Endpoint is the peer's declared endpoint, opaque to the registry.
	Endpoint string `json:"endpoint"`

	// TTLSeconds is the caller-declared staleness horizon.
	TTLSeconds int64 `json:"ttl_seconds"`

	// Metadata is arbitrary caller data, opaque to the registry.
	Metadata map[string]string `json:"metadata,omitempty"`

	// SourceAddress is the "host:port" the transport layer observed.
	SourceAddress string `json:"source_address"`

	// RegisteredAt is set on register and refreshed on heartbeat
	// (Unix milliseconds).
	RegisteredAt int64 `json:"registered_at"`
}

// PeerView is the public projection of a PeerRecord returned by
// discovery and pushed to subscribers.
type PeerView struct {
	PeerID        string            `json:"peer_id"`
	Name          string            `json:"name"`
	Endpoint      string            `json:"endpoint"`
	SourceAddress string            `json:"source_address"`
	Metadata      map[string]string `json:"metadata,omitempty"`

	// Age is whole seconds since the last register or heartbeat,
	// rounded to nearest.
	Age int64 `json:"age"`
}

// NewPeerRecord creates a record registered at now with the default
// TTL. Callers overwrite fields before validation.
func NewPeerRecord(name, endpoint string) *PeerRecord {
	return &PeerRecord{
		Name:         name,
		Endpoint:     endpoint,
		TTLSeconds:   DefaultTTLSeconds,
		RegisteredAt: time.Now().UnixMilli(),
	}
}

// ExpiredAt reports whether the record is stale at the given instant
// (Unix milliseconds). The boundary itself counts as expired.
func (p *PeerRecord) ExpiredAt(nowMillis int64) bool {
	return nowMillis-p.RegisteredAt >= p.TTLSeconds*1000
}

// AgeAt returns the record's age in whole seconds at the given instant,
// rounded to nearest.
func (p *PeerRecord) AgeAt(nowMillis int64) int64 {
	elapsed := nowMillis - p.RegisteredAt
	if elapsed <= 0 {
		return 0
	}
	return (elapsed + 500) / 1000
}

// View projects the record to its public view at the given instant.
// SourceAddress is part of the public view; RegisteredAt and TTL are not.
func (p *PeerRecord) View(nowMillis int64) PeerView {
	return PeerView{
		PeerID:        p.PeerID,
		Name:          p.Name,
		Endpoint:      p.Endpoint,
		SourceAddress: p.SourceAddress,
		Metadata:      p.Metadata,
		Age:           p.AgeAt(nowMillis),
	}
}

// Touch refreshes RegisteredAt to the given instant.
func (p *PeerRecord) Touch(nowMillis int64) {
	p.RegisteredAt = nowMillis
}

// Clone creates a deep copy of the record.
func (p *PeerRecord) Clone() *PeerRecord {
	clone := *p
	if p.Metadata != nil {
		clone.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}

// Validate validates the record against constraints. It returns a
// DomainError with code PM-PEER-4001 listing every violation.
func (p *PeerRecord) Validate() error {
	var violations []string

	if p.Name == "" {
		violations = append(violations, "name is required")
	} else if len(p.Name) > MaxNameLength {
		violations = append(violations, "name exceeds 256 characters")
	}

	if p.Endpoint == "" {
		violations = append(violations, "endpoint is required")
	} else if len(p.Endpoint) > MaxEndpointLength {
		violations = append(violations, "endpoint exceeds 2048 characters")
	}

	if p.TTLSeconds < 0 {
		violations = append(violations, "ttl_seconds must be non-negative")
	}

	if len(p.PeerID) > MaxPeerIDLength {
		violations = append(violations, "peer_id exceeds 128 characters")
	}

	if err := p.validateMetadata(); err != nil {
		violations = append(violations, err.Error())
	}

	if len(violations) > 0 {
		return ErrPeerValidation.WithDetails(strings.Join(violations, "; "))
	}

	return nil
}

func (p *PeerRecord) validateMetadata() error {
	if p.Metadata == nil {
		return nil
	}
	if len(p.Metadata) > MaxMetadataKeys {
		return ErrPeerValidation.WithDetails("metadata exceeds 64 keys")
	}
	for k, v := range p.Metadata {
		if len(k) > MaxMetadataKeyLen {
			return ErrPeerValidation.WithDetails("metadata key exceeds 128 characters")
		}
		if len(v) > MaxMetadataValLen {
			return ErrPeerValidation.WithDetails("metadata value exceeds 1KB")
		}
	}
	return nil
}

// MaxTTLSeconds returns the largest member TTL in the list, the value
// that governs group-level expiry. The list must be non-empty; zero is
// returned for an empty list so callers can treat it as "delete".
func MaxTTLSeconds(members []*PeerRecord) int64 {
	var max int64
	for _, m := range members {
		if m.TTLSeconds > max {
			max = m.TTLSeconds
		}
	}
	return max
}
