package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway counters and gauges for the realtime layer.
var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sou9i",
		Subsystem: "realtime",
		Name:      "active_connections",
		Help:      "Number of websocket connections currently registered.",
	})

	BroadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sou9i",
		Subsystem: "realtime",
		Name:      "broadcasts_total",
		Help:      "Room broadcasts emitted, by event type.",
	}, []string{"event"})

	DroppedConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sou9i",
		Subsystem: "realtime",
		Name:      "dropped_connections_total",
		Help:      "Connections closed because their send buffer overflowed.",
	})
)
