package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all application metrics.
//
// A nil *Registry is valid: every method is a no-op, so components can
// run unmetered (tests, embedded use).
type Registry struct {
	reg *prometheus.Registry

	registersTotal    prometheus.Counter
	heartbeatsTotal   prometheus.Counter
	unsubscribesTotal prometheus.Counter
	discoveriesTotal  prometheus.Counter
	membersExpired    prometheus.Counter
	groupsEvicted     prometheus.Counter
	observersDropped  prometheus.Counter

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a metrics registry with all collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		reg: reg,
		registersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peermeet_registers_total",
			Help: "Total register operations.",
		}),
		heartbeatsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peermeet_heartbeats_total",
			Help: "Total heartbeat operations.",
		}),
		unsubscribesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peermeet_unsubscribes_total",
			Help: "Total unsubscribe operations.",
		}),
		discoveriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peermeet_discoveries_total",
			Help: "Total discovery queries.",
		}),
		membersExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peermeet_members_expired_total",
			Help: "Members pruned by the expiration filter.",
		}),
		groupsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peermeet_groups_evicted_total",
			Help: "Groups evicted under capacity pressure.",
		}),
		observersDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peermeet_observers_dropped_total",
			Help: "Observers detached after a failed push.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peermeet_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "peermeet_http_request_duration_seconds",
			Help:    "HTTP request duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		r.registersTotal,
		r.heartbeatsTotal,
		r.unsubscribesTotal,
		r.discoveriesTotal,
		r.membersExpired,
		r.groupsEvicted,
		r.observersDropped,
		r.httpRequestsTotal,
		r.httpRequestDuration,
	)

	return r
}

// RegisterStatsFuncs registers gauges backed by live registry state.
// Pass nil for any stat that is not available.
func (r *Registry) RegisterStatsFuncs(groups, observers, subscriptionKeys func() float64) {
	if r == nil {
		return
	}
	register := func(name, help string, fn func() float64) {
		if fn == nil {
			return
		}
		r.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: name,
			Help: help,
		}, fn))
	}
	register("peermeet_groups", "Groups currently stored.", groups)
	register("peermeet_observers", "Live subscribed observers.", observers)
	register("peermeet_subscription_keys", "Group keys with at least one observer.", subscriptionKeys)
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// IncRegister counts one register operation.
func (r *Registry) IncRegister() {
	if r != nil {
		r.registersTotal.Inc()
	}
}

// IncHeartbeat counts one heartbeat operation.
func (r *Registry) IncHeartbeat() {
	if r != nil {
		r.heartbeatsTotal.Inc()
	}
}

// IncUnsubscribe counts one unsubscribe operation.
func (r *Registry) IncUnsubscribe() {
	if r != nil {
		r.unsubscribesTotal.Inc()
	}
}

// IncDiscovery counts one discovery query.
func (r *Registry) IncDiscovery() {
	if r != nil {
		r.discoveriesTotal.Inc()
	}
}

// AddMembersExpired counts members pruned by the expiration filter.
func (r *Registry) AddMembersExpired(n int) {
	if r != nil && n > 0 {
		r.membersExpired.Add(float64(n))
	}
}

// IncGroupEvicted counts one capacity eviction.
func (r *Registry) IncGroupEvicted() {
	if r != nil {
		r.groupsEvicted.Inc()
	}
}

// IncObserverDropped counts one detached observer.
func (r *Registry) IncObserverDropped() {
	if r != nil {
		r.observersDropped.Inc()
	}
}

// ObserveHTTPRequest records one completed HTTP request.
func (r *Registry) ObserveHTTPRequest(method, status string, seconds float64) {
	if r == nil {
		return
	}
	r.httpRequestsTotal.WithLabelValues(method, status).Inc()
	r.httpRequestDuration.WithLabelValues(method).Observe(seconds)
}
