// Package metrics implements the MetricsCollector port over Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/candor-ai/go-tribunal/internal/ports"
)

// PrometheusCollector records adjudication measurements in the default
// Prometheus registry, exposed through the API's /metrics endpoint.
type PrometheusCollector struct {
	latency    *prometheus.HistogramVec
	counters   *prometheus.CounterVec
	gauges     *prometheus.GaugeVec
	histograms *prometheus.HistogramVec
}

var _ ports.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector registers the tribunal metric families. Call once
// per process; promauto panics on duplicate registration.
func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tribunal_operation_duration_seconds",
				Help:    "Latency of tribunal operations (evaluator calls, LLM requests, decisions).",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "evaluator", "role", "model", "success"},
		),
		counters: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tribunal_events_total",
				Help: "Counts of tribunal events such as evaluator failures and decisions.",
			},
			[]string{"event", "evaluator", "role", "model", "success"},
		),
		gauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tribunal_state",
				Help: "Current state values such as pool size.",
			},
			[]string{"metric"},
		),
		histograms: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tribunal_observations",
				Help:    "Distribution observations such as novelty scores and token counts.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"metric", "model"},
		),
	}
}

// RecordLatency records operation latency in seconds. Absent label keys
// record as empty values, so evaluator calls and LLM requests can carry
// different label subsets against one metric family.
func (c *PrometheusCollector) RecordLatency(operation string, d time.Duration, labels map[string]string) {
	c.latency.WithLabelValues(operation, labels["evaluator"], labels["role"],
		labels["model"], labels["success"]).Observe(d.Seconds())
}

// IncrementCounter bumps the named event counter by one.
func (c *PrometheusCollector) IncrementCounter(name string, labels map[string]string) {
	c.counters.WithLabelValues(name, labels["evaluator"], labels["role"],
		labels["model"], labels["success"]).Inc()
}

// SetGauge sets the named state gauge.
func (c *PrometheusCollector) SetGauge(name string, value float64, labels map[string]string) {
	c.gauges.WithLabelValues(name).Set(value)
}

// ObserveHistogram records a distribution observation.
func (c *PrometheusCollector) ObserveHistogram(name string, value float64, labels map[string]string) {
	c.histograms.WithLabelValues(name, labels["model"]).Observe(value)
}
