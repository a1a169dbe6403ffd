// Package metrics exposes prometheus counters for the document and graph
// codecs. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "semcodec"

// Metrics holds the codec counters.
type Metrics struct {
	registry *prometheus.Registry

	decoded        *prometheus.CounterVec
	decodeFailures *prometheus.CounterVec
	encoded        *prometheus.CounterVec
	graphEncodes   *prometheus.CounterVec
	graphFailures  *prometheus.CounterVec
	triples        prometheus.Counter
}

// New creates the counters and registers them with a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "decoded_total",
			Help:      "Records decoded from documents.",
		}, []string{"type"}),
		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "decode_failures_total",
			Help:      "Document decodes that failed.",
		}, []string{"type"}),
		encoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "encoded_total",
			Help:      "Records encoded into documents.",
		}, []string{"type"}),
		graphEncodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "encodes_total",
			Help:      "Top-level graph encodes.",
		}, []string{"type"}),
		graphFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "encode_failures_total",
			Help:      "Top-level graph encodes that failed.",
		}, []string{"type"}),
		triples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "triples_emitted_total",
			Help:      "Triples handed to sinks, duplicates included.",
		}),
	}
	m.registry.MustRegister(m.decoded, m.decodeFailures, m.encoded,
		m.graphEncodes, m.graphFailures, m.triples)
	return m
}

// Gatherer returns the registry holding the counters.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// ObserveDecode records one top-level decode.
func (m *Metrics) ObserveDecode(typeName string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.decodeFailures.WithLabelValues(typeName).Inc()
		return
	}
	m.decoded.WithLabelValues(typeName).Inc()
}

// ObserveEncode records one top-level document encode.
func (m *Metrics) ObserveEncode(typeName string) {
	if m == nil {
		return
	}
	m.encoded.WithLabelValues(typeName).Inc()
}

// ObserveGraphEncode records one top-level graph encode and the triples it
// emitted, including those emitted before a failure.
func (m *Metrics) ObserveGraphEncode(typeName string, triples int, err error) {
	if m == nil {
		return
	}
	m.triples.Add(float64(triples))
	if err != nil {
		m.graphFailures.WithLabelValues(typeName).Inc()
		return
	}
	m.graphEncodes.WithLabelValues(typeName).Inc()
}

// WriteTextfile dumps the counters in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Gatherer()); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
