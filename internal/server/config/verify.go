// Package config defines the server configuration structure.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyRegistry(&cfg.Registry); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyLimits(&cfg.Limits); err != nil {
		return err
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q is not host:port: %w", cfg.HTTP.Addr, err)
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http: tls_cert_file and tls_key_file must be set together")
	}
	return nil
}

func verifyRegistry(cfg *RegistrySection) error {
	if cfg.Capacity < 1 {
		return errors.New("registry.capacity must be at least 1")
	}
	if cfg.MaxGroupAge <= 0 {
		return errors.New("registry.max_group_age must be positive")
	}
	switch cfg.ProxyHop {
	case "first", "last":
	default:
		return fmt.Errorf("registry.proxy_hop must be \"first\" or \"last\", got %q", cfg.ProxyHop)
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	snap := &cfg.Snapshot
	if snap.Dir == "" {
		// Persistence disabled.
		return nil
	}

	if err := os.MkdirAll(snap.Dir, 0750); err != nil {
		return fmt.Errorf("cannot create snapshot directory: %w", err)
	}
	if snap.RetentionCount < 1 {
		return errors.New("storage.snapshot.retention_count must be at least 1")
	}
	if snap.EncryptionKey != "" {
		key, err := hex.DecodeString(snap.EncryptionKey)
		if err != nil {
			return errors.New("storage.snapshot.encryption_key must be hex")
		}
		if len(key) != 32 {
			return fmt.Errorf("storage.snapshot.encryption_key must decode to 32 bytes, got %d", len(key))
		}
	}
	return nil
}

func verifyLimits(cfg *LimitsSection) error {
	if cfg.RatePerSecond < 0 {
		return errors.New("limits.rate_per_second must not be negative")
	}
	if cfg.RatePerSecond > 0 && cfg.Burst < 1 {
		return errors.New("limits.burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}
