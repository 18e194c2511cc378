// Package metrics declares the process-wide Prometheus collectors shared
// across the session and world tasks, following the same
// NewXxx(prometheus.Registerer) construction the auth package's Metrics
// uses, generalized to conniver's actual dependency on
// github.com/prometheus/client_golang rather than its custom TCPInfo
// collector (which has no analogue here).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every collector the session and world tasks update.
type Metrics struct {
	TickDuration     prometheus.Histogram
	ConnectedPlayers prometheus.Gauge
	PacketsIn        *prometheus.CounterVec
	PacketsOut       *prometheus.CounterVec
	DroppedPackets   prometheus.Counter
}

// New registers every collector on reg and returns the handle.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "corecraft_world_tick_seconds",
			Help:    "Wall-clock duration of one world tick.",
			Buckets: prometheus.DefBuckets,
		}),
		ConnectedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "corecraft_connected_players",
			Help: "Players currently attached to any world.",
		}),
		PacketsIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corecraft_packets_in_total",
			Help: "Serverbound packets received, by phase.",
		}, []string{"phase"}),
		PacketsOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corecraft_packets_out_total",
			Help: "Clientbound packets sent, by phase.",
		}, []string{"phase"}),
		DroppedPackets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corecraft_packets_dropped_total",
			Help: "Serverbound packets that reached no handler.",
		}),
	}
	reg.MustRegister(m.TickDuration, m.ConnectedPlayers, m.PacketsIn, m.PacketsOut, m.DroppedPackets)
	return m
}
