// Package metrics wraps a prometheus registry with the counters and
// histograms fluxkit's subsystems report against. Every subsystem takes
// a *Registry optionally; a nil Registry is a no-op so instrumenting a
// store, a query client, or a persistence controller never requires
// wiring metrics first (grounded in the teacher's own tolerant,
// zero-value-friendly option structs).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the metrics fluxkit emits around a single
// prometheus.Registry so a host application registers one collector set
// regardless of how many stores/queries/persistence controllers it runs.
type Registry struct {
	reg *prometheus.Registry

	DispatchTotal       *prometheus.CounterVec
	ReducerDuration     *prometheus.HistogramVec
	QueryCacheResult    *prometheus.CounterVec
	PersistWriteDuration *prometheus.HistogramVec
}

// NewRegistry builds a Registry backed by a fresh prometheus.Registry
// and registers every collector on it.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fluxkit_store_dispatch_total",
			Help: "Number of actions dispatched through a store, by action type.",
		}, []string{"action_type"}),
		ReducerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fluxkit_store_reducer_duration_seconds",
			Help:    "Time spent running a store's root reducer for one dispatch.",
			Buckets: prometheus.DefBuckets,
		}, []string{}),
		QueryCacheResult: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fluxkit_query_cache_result_total",
			Help: "Query cache lookups, by endpoint and result (hit, miss, error).",
		}, []string{"endpoint", "result"}),
		PersistWriteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fluxkit_persist_write_duration_seconds",
			Help:    "Time spent writing a persisted state snapshot to storage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"key"}),
	}

	reg.MustRegister(r.DispatchTotal, r.ReducerDuration, r.QueryCacheResult, r.PersistWriteDuration)
	return r
}

// Handler returns an http.Handler serving this registry's metrics in
// Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveDispatch is safe to call on a nil *Registry.
func (r *Registry) ObserveDispatch(actionType string) {
	if r == nil {
		return
	}
	r.DispatchTotal.WithLabelValues(actionType).Inc()
}

// ObserveReducerDuration is safe to call on a nil *Registry.
func (r *Registry) ObserveReducerDuration(seconds float64) {
	if r == nil {
		return
	}
	r.ReducerDuration.WithLabelValues().Observe(seconds)
}

// ObserveQueryCacheResult is safe to call on a nil *Registry. result
// should be one of "hit", "miss", or "error".
func (r *Registry) ObserveQueryCacheResult(endpoint, result string) {
	if r == nil {
		return
	}
	r.QueryCacheResult.WithLabelValues(endpoint, result).Inc()
}

// ObservePersistWriteDuration is safe to call on a nil *Registry.
func (r *Registry) ObservePersistWriteDuration(key string, seconds float64) {
	if r == nil {
		return
	}
	r.PersistWriteDuration.WithLabelValues(key).Observe(seconds)
}
