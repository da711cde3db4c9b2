// Package metrics exposes the Prometheus instrumentation a caller
// wires around the core (the core itself emits no metrics — spec.md
// §1 scopes metrics/dashboards out of the core). Grounded on wmap's
// internal/telemetry/metrics.go: package-level CounterVec/GaugeVec
// built with promauto and a sync.Once-guarded InitMetrics, here
// driven from Engine.Analyze call sites instead of sniffer/injection
// call sites.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsAnalyzed counts every packet passed to Engine.Analyze,
	// by protocol.
	PacketsAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paccore",
			Name:      "packets_analyzed_total",
			Help:      "Total number of packets analyzed, by protocol.",
		},
		[]string{"protocol"},
	)

	// ParseErrors counts frames rejected by the decoder.
	ParseErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "paccore",
			Name:      "parse_errors_total",
			Help:      "Total number of frames the decoder could not parse.",
		},
	)

	// AnomaliesEmitted counts anomalies, by kind.
	AnomaliesEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paccore",
			Name:      "anomalies_emitted_total",
			Help:      "Total number of anomalies emitted, by kind.",
		},
		[]string{"kind"},
	)

	// TopologyNodes tracks the current node count in the topology
	// graph.
	TopologyNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "paccore",
			Name:      "topology_nodes",
			Help:      "Current number of nodes in the topology graph.",
		},
	)

	// ActiveFlows tracks the current flow count in the classifier.
	ActiveFlows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "paccore",
			Name:      "active_flows",
			Help:      "Current number of tracked flows.",
		},
	)
)

// ObserveReport updates PacketsAnalyzed, ParseErrors, and
// AnomaliesEmitted from one Analyze call's result.
func ObserveReport(protocol string, parseError bool, anomalyKinds []string) {
	if parseError {
		ParseErrors.Inc()
		return
	}
	PacketsAnalyzed.WithLabelValues(protocol).Inc()
	for _, kind := range anomalyKinds {
		AnomaliesEmitted.WithLabelValues(kind).Inc()
	}
}
