package signals

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for one context.
type Metrics struct {
	Updates           prometheus.Counter
	DecodeErrors      prometheus.Counter
	ApplyErrors       prometheus.Counter
	PatchesBuffered   prometheus.Counter
	ConnectionErrors  prometheus.Counter
	PendingSignals    prometheus.Gauge
	RegisteredSignals prometheus.Gauge
}

// NewMetrics creates and registers the context metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Updates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sigstream",
			Subsystem: "client",
			Name:      "updates_total",
			Help:      "Update envelopes received.",
		}),
		DecodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sigstream",
			Subsystem: "client",
			Name:      "decode_errors_total",
			Help:      "Envelopes dropped because they could not be decoded.",
		}),
		ApplyErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sigstream",
			Subsystem: "client",
			Name:      "apply_errors_total",
			Help:      "Patches that failed to apply to their cell.",
		}),
		PatchesBuffered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sigstream",
			Subsystem: "client",
			Name:      "patches_buffered_total",
			Help:      "Patches buffered for signals not yet registered.",
		}),
		ConnectionErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sigstream",
			Subsystem: "client",
			Name:      "connection_errors_total",
			Help:      "Transport-level failures surfaced by the stream.",
		}),
		PendingSignals: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sigstream",
			Subsystem: "client",
			Name:      "pending_signals",
			Help:      "Names with buffered patches awaiting registration.",
		}),
		RegisteredSignals: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sigstream",
			Subsystem: "client",
			Name:      "registered_signals",
			Help:      "Signals currently registered.",
		}),
	}
}

// defaultMetrics is the shared instance used by contexts built without
// WithMetrics, registered once on the default registerer.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

func getDefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}
