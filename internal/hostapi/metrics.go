package hostapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics is the Prometheus exposition surface for a running node: chain
// length, connected-peer count, finalised-block count, and received-
// transaction count. There is no pending-pool size metric. All four are
// updated by Server.Watch as it relays events from the node's event
// channel (see events.go).
type metrics struct {
	registry *prometheus.Registry

	chainLength      prometheus.Gauge
	connectedPeers   prometheus.Gauge
	finalisedBlocks  prometheus.Counter
	transactionsSeen prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		chainLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spnode",
			Name:      "chain_length",
			Help:      "Number of blocks in the local chain, genesis included.",
		}),
		connectedPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spnode",
			Name:      "connected_peers",
			Help:      "Number of currently connected peers.",
		}),
		finalisedBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spnode",
			Name:      "finalised_blocks_total",
			Help:      "Total number of BlockFinalised events observed.",
		}),
		transactionsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spnode",
			Name:      "transactions_received_total",
			Help:      "Total number of TransactionReceived events observed.",
		}),
	}

	m.registry.MustRegister(m.chainLength, m.connectedPeers, m.finalisedBlocks, m.transactionsSeen)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
