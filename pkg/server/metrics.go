package server

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HubMetrics holds the Prometheus instruments for one hub.
type HubMetrics hubMetrics

type hubMetrics struct {
	broadcasts  prometheus.Counter
	dropped     prometheus.Counter
	subscribers prometheus.Gauge
	sources     prometheus.Gauge
}

// NewHubMetrics creates and registers the hub metrics on reg.
func NewHubMetrics(reg prometheus.Registerer) *HubMetrics {
	factory := promauto.With(reg)
	return &HubMetrics{
		broadcasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sigstream",
			Subsystem: "hub",
			Name:      "broadcasts_total",
			Help:      "Update envelopes broadcast to subscribers.",
		}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sigstream",
			Subsystem: "hub",
			Name:      "dropped_subscribers_total",
			Help:      "Subscribers disconnected for falling behind.",
		}),
		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sigstream",
			Subsystem: "hub",
			Name:      "subscribers",
			Help:      "Currently attached subscribers.",
		}),
		sources: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sigstream",
			Subsystem: "hub",
			Name:      "sources",
			Help:      "Tracked signal sources.",
		}),
	}
}

// defaultHubMetrics is shared by hubs built without WithMetrics,
// registered once on the default registerer.
var (
	defaultHubMetrics     *hubMetrics
	defaultHubMetricsOnce sync.Once
)

func getDefaultHubMetrics() *hubMetrics {
	defaultHubMetricsOnce.Do(func() {
		defaultHubMetrics = (*hubMetrics)(NewHubMetrics(prometheus.DefaultRegisterer))
	})
	return defaultHubMetrics
}
