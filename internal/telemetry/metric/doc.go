// Package metric provides Prometheus metrics for PeerMeet.
//
// It exposes registry operation counters, group/observer gauges, and
// HTTP request metrics on the /metrics endpoint.
package metric
