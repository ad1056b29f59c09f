// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr     = "127.0.0.1:7410"
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 0 // streaming endpoints manage their own deadlines

	DefaultCapacity    = 10000
	DefaultMaxGroupAge = 24 * time.Hour
	DefaultProxyHop    = "first"

	DefaultSnapshotInterval       = 5 * time.Minute
	DefaultSnapshotRetentionCount = 5
	DefaultSnapshotRetentionDays  = 7

	DefaultRatePerSecond = 50.0
	DefaultRateBurst     = 100

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:         DefaultHTTPAddr,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
			},
		},
		Registry: RegistrySection{
			Capacity:    DefaultCapacity,
			MaxGroupAge: DefaultMaxGroupAge,
			ProxyHop:    DefaultProxyHop,
		},
		Storage: StorageSection{
			Snapshot: SnapshotConfig{
				Interval:       DefaultSnapshotInterval,
				RetentionCount: DefaultSnapshotRetentionCount,
				RetentionDays:  DefaultSnapshotRetentionDays,
			},
		},
		Limits: LimitsSection{
			RatePerSecond: DefaultRatePerSecond,
			Burst:         DefaultRateBurst,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
