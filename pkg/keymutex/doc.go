// Package keymutex provides striped mutual exclusion keyed by string.
//
// It hashes keys onto a fixed set of mutexes so that operations on the
// same key serialize while operations on distinct keys usually proceed
// in parallel. Two distinct keys may share a stripe; that only costs
// parallelism, never correctness.
package keymutex
