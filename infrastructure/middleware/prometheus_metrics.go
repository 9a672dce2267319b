// Package middleware provides cross-cutting concerns for the scoring
// service.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-signalhunt/internal/application"
	"github.com/ahrav/go-signalhunt/internal/ports"
	"github.com/ahrav/go-signalhunt/internal/scoring"
)

const metricsNamespace = "signalhunt"

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It exports scoring run outcomes, row throughput, enrichment
// volume and request latency.
type PrometheusMetrics struct {
	runs             *prometheus.CounterVec
	rows             *prometheus.CounterVec
	unknownTags      *prometheus.CounterVec
	sightings        *prometheus.CounterVec
	teamTotals       *prometheus.HistogramVec
	executionLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all metrics in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWith(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWith registers all metrics with reg. It panics if the
// metrics are already registered there, like promauto does.
func NewPrometheusMetricsWith(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      scoring.MetricScoreRuns,
				Help:      "Total number of scoring runs by outcome.",
			},
			[]string{"status", "unit"},
		),
		rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "rows_total",
				Help:      "Measurement rows processed, by whether they were scored or skipped.",
			},
			[]string{"outcome", "unit"},
		),
		unknownTags: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      scoring.MetricUnknownTags,
				Help:      "Bonus tags that matched no category.",
			},
			[]string{"unit"},
		),
		sightings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      application.MetricSightingsEnriched,
				Help:      "Sightings submitted for enrichment by outcome.",
			},
			[]string{"status", "unit"},
		),
		teamTotals: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      scoring.MetricTeamTotal,
				Help:      "Distribution of final team totals per scoring run.",
				Buckets:   prometheus.LinearBuckets(0, 50, 20),
			},
			[]string{"unit"},
		),
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "Execution time of scoring, enrichment and request handling.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "unit"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "Total number of other counted operations.",
			},
			[]string{"operation", "status", "unit"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "state",
				Help:      "Most recent values of scoring gauges such as teams scored.",
			},
			[]string{"metric", "unit"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation, unitLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	unit := unitLabel(labels)

	switch metric {
	case scoring.MetricScoreRuns:
		pm.runs.WithLabelValues(statusLabel(labels), unit).Add(value)
	case scoring.MetricRowsScored:
		pm.rows.WithLabelValues("scored", unit).Add(value)
	case scoring.MetricRowsSkipped:
		pm.rows.WithLabelValues("skipped", unit).Add(value)
	case scoring.MetricUnknownTags:
		pm.unknownTags.WithLabelValues(unit).Add(value)
	case application.MetricSightingsEnriched:
		pm.sightings.WithLabelValues(statusLabel(labels), unit).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, statusLabel(labels), unit).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, unitLabel(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. Team totals have their own buckets;
// everything else shares the duration histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	unit := unitLabel(labels)
	if metric == scoring.MetricTeamTotal {
		pm.teamTotals.WithLabelValues(unit).Observe(value)
		return
	}
	pm.executionLatency.WithLabelValues(metric, unit).Observe(value)
}

func unitLabel(labels map[string]string) string {
	if unit := labels["unit"]; unit != "" {
		return unit
	}
	return "unknown"
}

func statusLabel(labels map[string]string) string {
	if status := labels["status"]; status != "" {
		return status
	}
	return "success"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
