package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-signalhunt/internal/domain"
	"github.com/ahrav/go-signalhunt/internal/ports"
)

// Metric names emitted by the Enricher.
const (
	MetricSightingsEnriched = "sightings_enriched_total"
	OperationEnrich         = "enrich"
	DefaultConcurrency      = 8
	enricherTracerName      = "signalhunt-enricher"
	enricherUnit            = "enricher"
)

// Enricher resolves the area id and reference-node distance of field
// sightings, producing rows ready for scoring.
//
// Sightings are resolved concurrently up to a fixed limit. Each result is
// written to the slot of its input, so output order always matches input
// order. The first resolver failure cancels the remaining work and is
// returned naming the sighting; unresolved values are never emitted.
type Enricher struct {
	areas       ports.AreaResolver
	distances   ports.DistanceResolver
	concurrency int
	logger      *slog.Logger
	metrics     ports.MetricsCollector
	tracer      trace.Tracer
}

// EnricherOption customizes an Enricher.
type EnricherOption func(*Enricher)

// WithConcurrency bounds the number of sightings resolved at once.
// Values below one are ignored.
func WithConcurrency(n int) EnricherOption {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithEnricherLogger sets the structured logger.
func WithEnricherLogger(logger *slog.Logger) EnricherOption {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEnricherMetrics sets the metrics collector.
func WithEnricherMetrics(metrics ports.MetricsCollector) EnricherOption {
	return func(e *Enricher) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// WithEnricherTracer overrides the OpenTelemetry tracer.
func WithEnricherTracer(tracer trace.Tracer) EnricherOption {
	return func(e *Enricher) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// NewEnricher creates an Enricher over the given resolvers.
// NewEnricher returns an error if either resolver is nil.
func NewEnricher(areas ports.AreaResolver, distances ports.DistanceResolver, opts ...EnricherOption) (*Enricher, error) {
	if areas == nil {
		return nil, fmt.Errorf("area resolver cannot be nil")
	}
	if distances == nil {
		return nil, fmt.Errorf("distance resolver cannot be nil")
	}

	e := &Enricher{
		areas:       areas,
		distances:   distances,
		concurrency: DefaultConcurrency,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:     ports.NoopMetrics{},
		tracer:      otel.Tracer(enricherTracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Enrich resolves every sighting into a row. Sightings without a team are
// passed through unresolved since scoring skips them anyway.
func (e *Enricher) Enrich(ctx context.Context, sightings []domain.Sighting) ([]domain.RawRow, error) {
	ctx, span := e.tracer.Start(ctx, "Enricher.Enrich",
		trace.WithAttributes(
			attribute.Int("sightings.count", len(sightings)),
			attribute.Int("concurrency", e.concurrency),
		),
	)
	defer span.End()

	start := time.Now()
	rows := make([]domain.RawRow, len(sightings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, s := range sightings {
		if strings.TrimSpace(s.Team) == "" {
			rows[i] = passThrough(s)
			continue
		}
		g.Go(func() error {
			row, err := e.resolve(gctx, s)
			if err != nil {
				return fmt.Errorf("sighting %q (index %d): %w", s.ID, i, err)
			}
			rows[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.RecordCounter(MetricSightingsEnriched, float64(len(sightings)),
			map[string]string{"unit": enricherUnit, "status": "error"})
		e.logger.ErrorContext(ctx, "enrichment failed", "sightings", len(sightings), "error", err)
		return nil, err
	}

	elapsed := time.Since(start)
	labels := map[string]string{"unit": enricherUnit}
	e.metrics.RecordLatency(OperationEnrich, elapsed, labels)
	e.metrics.RecordCounter(MetricSightingsEnriched, float64(len(sightings)),
		map[string]string{"unit": enricherUnit, "status": "success"})
	span.SetAttributes(attribute.Int64("latency_ms", elapsed.Milliseconds()))

	e.logger.InfoContext(ctx, "enrichment complete", "sightings", len(sightings), "elapsed", elapsed)
	return rows, nil
}

func (e *Enricher) resolve(ctx context.Context, s domain.Sighting) (domain.RawRow, error) {
	areaID, err := e.areas.Resolve(ctx, s.Latitude, s.Longitude)
	if err != nil {
		return domain.RawRow{}, err
	}
	distance, err := e.distances.Distance(ctx, s.Latitude, s.Longitude, s.ReferenceNode)
	if err != nil {
		return domain.RawRow{}, err
	}
	return s.ToRawRow(areaID, distance), nil
}

func passThrough(s domain.Sighting) domain.RawRow {
	row := s.ToRawRow("", 0)
	row[domain.ColNodeDistance] = ""
	return row
}
