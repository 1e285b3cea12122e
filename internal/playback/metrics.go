package playback

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "waves_playback"

type metrics struct {
	loads         *prometheus.CounterVec
	staleEvents   prometheus.Counter
	transitions   *prometheus.CounterVec
	droppedEvents *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "loads_total",
			Help:      "Track loads by outcome.",
		}, []string{"result"}),
		staleEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stale_events_total",
			Help:      "Backend notifications discarded because their load was superseded.",
		}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "transitions_total",
			Help:      "Transport state transitions by target state.",
		}, []string{"state"}),
		droppedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dropped_events_total",
			Help:      "Events not delivered to a subscriber whose buffer was full.",
		}, []string{"event"}),
	}
}
