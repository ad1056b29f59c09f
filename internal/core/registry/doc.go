// Package registry implements the rendezvous protocol: register,
// heartbeat, unsubscribe, and discovery against the bounded group
// store, with fan-out to subscribed observers.
//
// All four operations on the same group key are linearizable with
// respect to each other; operations on different keys run in parallel.
package registry
