// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for peermeet-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Registry RegistrySection `koanf:"registry"`
	Storage  StorageSection  `koanf:"storage"`
	Limits   LimitsSection   `koanf:"limits"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	TLSCertFile  string        `koanf:"tls_cert_file"`
	TLSKeyFile   string        `koanf:"tls_key_file"`
}

// RegistrySection configures the in-memory group registry.
type RegistrySection struct {
	// Capacity is the maximum number of groups held at once. The
	// least recently used group is evicted when it is exceeded.
	Capacity int `koanf:"capacity"`

	// MaxGroupAge caps how long a group entry may live regardless of
	// member TTLs.
	MaxGroupAge time.Duration `koanf:"max_group_age"`

	// TrustProxyHeader enables reading the client address from the
	// X-Forwarded-For header instead of the socket peer.
	TrustProxyHeader bool `koanf:"trust_proxy_header"`

	// ProxyHop selects which X-Forwarded-For hop to use when
	// TrustProxyHeader is set: "first" or "last".
	ProxyHop string `koanf:"proxy_hop"`
}

// StorageSection configures snapshot persistence.
type StorageSection struct {
	Snapshot SnapshotConfig `koanf:"snapshot"`
}

// SnapshotConfig configures snapshot files and retention.
type SnapshotConfig struct {
	// Dir is the snapshot directory. Empty disables persistence.
	Dir string `koanf:"dir"`

	// Interval is how often a periodic snapshot is taken. Zero
	// disables periodic snapshots; a final one is still written on
	// shutdown when Dir is set.
	Interval time.Duration `koanf:"interval"`

	RetentionCount int `koanf:"retention_count"`
	RetentionDays  int `koanf:"retention_days"`

	// EncryptionKey is a hex-encoded 32-byte key. Empty disables
	// snapshot encryption.
	EncryptionKey string `koanf:"encryption_key"`
}

// LimitsSection configures request rate limiting.
type LimitsSection struct {
	// RatePerSecond is the per-client request budget. Zero disables
	// rate limiting.
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
