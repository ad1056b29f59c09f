// Package main provides the entry point for peermeet-cli.
//
// The CLI tool provides command-line access to a peermeet server for:
//
//   - Peer management (register, list, heartbeat, remove)
//   - Live membership watching over WebSocket
//   - Snapshot administration (create, list)
//   - Server inspection (status, health)
//   - CLI configuration management
//
// Usage:
//
//	peermeet-cli [command] [flags]
//	peermeet-cli -g my-group peer list --output json
//	peermeet-cli connect http://localhost:7410
//
// The group key is a shared secret; pass it with --group or the
// PEERMEET_GROUP_KEY environment variable.
package main
