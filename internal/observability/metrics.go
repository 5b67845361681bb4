package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the hazard service.
type Metrics struct {
	EventsReceived *prometheus.CounterVec // labels: event={report-hazard,join-location,verify-hazard,delete-hazard}
	EventErrors    *prometheus.CounterVec // labels: event, reason={invalid,not_found,unauthorized,internal}
	BroadcastsSent *prometheus.CounterVec // labels: scope={room,global,session}
	ActiveSessions prometheus.Gauge
	JournalDropped prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.EventsReceived,
		m.EventErrors,
		m.BroadcastsSent,
		m.ActiveSessions,
		m.JournalDropped,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rover",
			Name:      "events_received_total",
			Help:      "Inbound client events by kind.",
		}, []string{"event"}),
		EventErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rover",
			Name:      "event_errors_total",
			Help:      "Failed client events by kind and reason.",
		}, []string{"event", "reason"}),
		BroadcastsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rover",
			Name:      "broadcasts_sent_total",
			Help:      "Outbound fanout operations by scope.",
		}, []string{"scope"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rover",
			Name:      "active_sessions",
			Help:      "Currently connected websocket sessions.",
		}),
		JournalDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rover",
			Name:      "journal_dropped_total",
			Help:      "Lifecycle journal entries dropped because the queue was full.",
		}),
	}
}
