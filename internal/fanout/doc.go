// Package fanout maps group keys to live observers and pushes the
// current filtered member view to them whenever a group's effective
// membership changes.
//
// Delivery is at-most-once, best-effort: an observer that cannot keep
// up misses updates, and a broken observer is dropped, not retried. A
// push never blocks the mutation path.
package fanout
