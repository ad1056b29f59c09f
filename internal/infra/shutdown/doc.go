// Package shutdown coordinates graceful process termination.
//
// The server registers named hooks (HTTP listener, snapshot save,
// config watcher) and the handler runs them in reverse registration
// order when SIGINT or SIGTERM arrives, bounded by a timeout.
package shutdown
