// Package command provides CLI command definitions for peermeet-cli.
//
// Commands:
//
//   - connect: verify a server and save it as the default
//   - peer: register, list, heartbeat, remove, watch
//   - snapshot: create and list server snapshots
//   - system: status and health
//   - config: show and edit the CLI config file
//
// Global flags resolve against the config file: a flag or PEERMEET_*
// environment variable wins over the saved value.
package command
