package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ConnectedPlayers.Set(3)
	m.PacketsIn.WithLabelValues("play").Inc()
	m.DroppedPackets.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["corecraft_connected_players"])
	require.True(t, names["corecraft_packets_in_total"])
	require.True(t, names["corecraft_packets_dropped_total"])
}

func TestConnectedPlayersGaugeValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ConnectedPlayers.Set(5)

	var metric dto.Metric
	require.NoError(t, m.ConnectedPlayers.Write(&metric))
	require.Equal(t, 5.0, metric.GetGauge().GetValue())
}
