package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	Pulls            prometheus.Counter
	PullFailures     prometheus.Counter
	Mutations        prometheus.Counter
	MutationFailures prometheus.Counter
	Events           *prometheus.CounterVec
	Reconnects       prometheus.Counter
	CachedOrders     prometheus.Gauge
	PullLatencySec   prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	pulls := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sync_pulls_total"})
	pullFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sync_pull_failures_total"})
	mutations := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sync_mutations_total"})
	mutationFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_sync_mutation_failures_total"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pos_channel_events_total"}, []string{"event"})
	reconnects := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_channel_reconnects_total"})
	cachedOrders := prometheus.NewGauge(prometheus.GaugeOpts{Name: "pos_cached_orders"})
	pullLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_sync_pull_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(pulls, pullFailures, mutations, mutationFailures, events, reconnects, cachedOrders, pullLatency)
	return &Registry{
		reg:              r,
		Pulls:            pulls,
		PullFailures:     pullFailures,
		Mutations:        mutations,
		MutationFailures: mutationFailures,
		Events:           events,
		Reconnects:       reconnects,
		CachedOrders:     cachedOrders,
		PullLatencySec:   pullLatency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
