// Package config defines the configuration for peermeet-cli.
//
// The CLI reads a YAML file (default ~/.peermeet/cli.yaml) holding the
// default server, output format, and optionally a default group key.
// Flags and PEERMEET_* environment variables override it per
// invocation.
package config
