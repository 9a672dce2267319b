// Package ports defines the interfaces between the scoring core and the
// collaborators that sit around it: geographic resolvers upstream and
// metrics sinks on the side.
package ports

import (
	"context"
	"time"
)

// AreaResolver maps a point to the id of the administrative area (block
// group) that contains it.
type AreaResolver interface {
	// Resolve returns the id of the area containing the point. It returns a
	// *ResolveError wrapping ErrAreaNotFound when no area contains it.
	Resolve(ctx context.Context, lat, lon float64) (string, error)
}

// DistanceResolver measures the distance from a point to one of a small,
// fixed set of named reference nodes.
type DistanceResolver interface {
	// Distance returns the great-circle distance in miles. It returns a
	// *ResolveError wrapping ErrUnknownNode for unconfigured node names.
	Distance(ctx context.Context, lat, lon float64, node string) (float64, error)
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus or OpenTelemetry.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, such as team totals.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// NoopMetrics discards every measurement. It is the default collector when
// none is configured.
type NoopMetrics struct{}

var _ MetricsCollector = NoopMetrics{}

func (NoopMetrics) RecordLatency(string, time.Duration, map[string]string) {}
func (NoopMetrics) RecordCounter(string, float64, map[string]string)       {}
func (NoopMetrics) RecordGauge(string, float64, map[string]string)         {}
func (NoopMetrics) RecordHistogram(string, float64, map[string]string)     {}
