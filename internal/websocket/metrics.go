package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus collectors describing relay activity.
type Metrics struct {
	sessionsActive   prometheus.Gauge
	historyEvents    prometheus.Gauge
	connections      prometheus.Counter
	disconnects      *prometheus.CounterVec
	messagesReceived prometheus.Counter
	messagesRejected *prometheus.CounterVec
	deliveries       prometheus.Counter
	deliveryFailures prometheus.Counter
	replaysSent      prometheus.Counter
}

// builds the collectors and registers them with reg. a nil reg gets a private
// registry so several hubs can coexist in one process (tests).
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sketchrelay",
			Subsystem: "relay",
			Name:      "sessions_active",
			Help:      "Number of currently registered sessions.",
		}),
		historyEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sketchrelay",
			Subsystem: "relay",
			Name:      "history_events",
			Help:      "Number of events retained in the history log.",
		}),
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sketchrelay",
			Subsystem: "relay",
			Name:      "connections_total",
			Help:      "Sessions accepted since start.",
		}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sketchrelay",
			Subsystem: "relay",
			Name:      "disconnects_total",
			Help:      "Sessions deregistered, by close kind.",
		}, []string{"kind"}),
		messagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sketchrelay",
			Subsystem: "relay",
			Name:      "messages_received_total",
			Help:      "Inbound events appended to history.",
		}),
		messagesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sketchrelay",
			Subsystem: "relay",
			Name:      "messages_rejected_total",
			Help:      "Inbound events dropped before reaching history.",
		}, []string{"reason"}),
		deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sketchrelay",
			Subsystem: "relay",
			Name:      "deliveries_total",
			Help:      "Events queued to peers during fan-out.",
		}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sketchrelay",
			Subsystem: "relay",
			Name:      "delivery_failures_total",
			Help:      "Fan-out sends that failed and removed the peer.",
		}),
		replaysSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sketchrelay",
			Subsystem: "relay",
			Name:      "history_replays_total",
			Help:      "History replay messages sent to joining sessions.",
		}),
	}

	reg.MustRegister(
		m.sessionsActive,
		m.historyEvents,
		m.connections,
		m.disconnects,
		m.messagesReceived,
		m.messagesRejected,
		m.deliveries,
		m.deliveryFailures,
		m.replaysSent,
	)

	return m
}
