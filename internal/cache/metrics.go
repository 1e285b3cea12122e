package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "waves_cache"

// metrics are registered on the registerer given to the manager; a nil
// registerer yields unregistered collectors.
type metrics struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	evictions   prometheus.Counter
	corrupt     *prometheus.CounterVec
	diskErrors  *prometheus.CounterVec
	fetches     *prometheus.CounterVec
	memoryBytes prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "hits_total",
			Help:      "Cache hits by kind and tier.",
		}, []string{"kind", "tier"}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "misses_total",
			Help:      "Cache misses by kind.",
		}, []string{"kind"}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "memory_evictions_total",
			Help:      "Entries evicted from the memory tier to satisfy its budget.",
		}),
		corrupt: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "corrupt_entries_total",
			Help:      "Disk entries purged because they could not be decoded.",
		}, []string{"kind"}),
		diskErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "disk_errors_total",
			Help:      "Disk tier I/O failures by kind and operation.",
		}, []string{"kind", "op"}),
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fetches_total",
			Help:      "Loader fetches by kind and result.",
		}, []string{"kind", "result"}),
		memoryBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "memory_bytes",
			Help:      "Byte cost currently held by the memory tier.",
		}),
	}
}
