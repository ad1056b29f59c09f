// Package config defines the CLI configuration structure.
package config

import "time"

// CLIConfig is the configuration for peermeet-cli.
type CLIConfig struct {
	// Server is the default server base URL.
	Server string `yaml:"server"`

	// Output is the default output format: table, json, yaml.
	Output string `yaml:"output"`

	// GroupKey is the default group key. It is a shared secret; the
	// config file is written with owner-only permissions because of it.
	GroupKey string `yaml:"group_key,omitempty"`

	// CACert is an optional PEM file with extra root CAs for servers
	// behind a private CA.
	CACert string `yaml:"ca_cert,omitempty"`

	// Timeout bounds every request.
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "http://127.0.0.1:7410",
		Output:  "table",
		Timeout: 30 * time.Second,
	}
}
