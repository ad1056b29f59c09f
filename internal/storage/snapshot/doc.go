// Package snapshot persists the registry's groups across restarts.
//
// Snapshots are single files: magic bytes, a JSON header, a
// length-prefixed JSON payload (optionally encrypted), and a SHA-256
// checksum trailer. Saves are verbatim; the expiration filter is
// applied at load time, never at save time.
package snapshot
