// Package metrics provides Prometheus metrics for refdocs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for refdocs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// RPC request metrics
	RPCRequestsTotal   *prometheus.CounterVec
	RPCRequestDuration *prometheus.HistogramVec

	// Section lookup metrics
	LookupsTotal   *prometheus.CounterVec
	LookupDuration prometheus.Histogram
	SectionChars   prometheus.Histogram

	// Document store metrics
	StoreErrorsTotal *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RPCRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refdocs_rpc_requests_total",
				Help: "Total number of JSON-RPC requests",
			},
			[]string{"method", "status"},
		),
		RPCRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "refdocs_rpc_request_duration_seconds",
				Help:    "Duration of JSON-RPC requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refdocs_lookups_total",
				Help: "Total number of section lookups by outcome",
			},
			[]string{"outcome"},
		),
		LookupDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "refdocs_lookup_duration_seconds",
				Help:    "Duration of section lookups in seconds, store I/O included",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		SectionChars: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "refdocs_section_chars",
				Help:    "Size in characters of extracted sections before truncation",
				Buckets: prometheus.ExponentialBuckets(250, 2, 8),
			},
		),
		StoreErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refdocs_store_errors_total",
				Help: "Total number of document store failures",
			},
			[]string{"op", "kind"},
		),
	}
}

// ObserveRPC records one JSON-RPC request.
func (m *Metrics) ObserveRPC(method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RPCRequestsTotal.WithLabelValues(method, status).Inc()
	m.RPCRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveLookup records one section lookup.
func (m *Metrics) ObserveLookup(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(outcome).Inc()
	m.LookupDuration.Observe(d.Seconds())
}

// ObserveSection records the size of an extracted section.
func (m *Metrics) ObserveSection(chars int) {
	if m == nil {
		return
	}
	m.SectionChars.Observe(float64(chars))
}

// StoreError records a failed store call. kind is "not_found" or "error".
func (m *Metrics) StoreError(op, kind string) {
	if m == nil {
		return
	}
	m.StoreErrorsTotal.WithLabelValues(op, kind).Inc()
}
