package scoring

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-signalhunt/internal/domain"
	"github.com/ahrav/go-signalhunt/internal/ports"
)

// Metric names emitted by the Scorer.
const (
	MetricScoreRuns   = "score_runs_total"
	MetricRowsScored  = "rows_scored_total"
	MetricRowsSkipped = "rows_skipped_total"
	MetricUnknownTags = "unknown_tags_total"
	MetricTeams       = "teams_scored"
	MetricTeamTotal   = "team_total_points"
	OperationScoreRun = "score_run"
	scorerTracerName  = "signalhunt-scorer"
	scorerUnit        = "scorer"
)

// Scorer is the top-level entry point: rows in, ranked standings out.
//
// Concurrency: a Scorer holds only immutable rules and collaborators. Each
// call builds its own Tally, so concurrent calls on independent inputs are
// safe and repeated calls on the same input return identical results.
type Scorer struct {
	rules      Rules
	aggregator *Aggregator
	logger     *slog.Logger
	metrics    ports.MetricsCollector
	tracer     trace.Tracer
}

// Option customizes a Scorer.
type Option func(*Scorer)

// WithLogger sets the structured logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics ports.MetricsCollector) Option {
	return func(s *Scorer) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Scorer) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewScorer creates a Scorer for the given rules.
func NewScorer(rules Rules, opts ...Option) (*Scorer, error) {
	agg, err := NewAggregator(rules)
	if err != nil {
		return nil, err
	}
	s := &Scorer{
		rules:      rules,
		aggregator: agg,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:    ports.NoopMetrics{},
		tracer:     otel.Tracer(scorerTracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Rules returns the rules the Scorer was built with.
func (s *Scorer) Rules() Rules { return s.rules }

// TeamReport is the full breakdown for one team after both passes.
type TeamReport struct {
	Rank              int                `json:"rank"`
	Team              string             `json:"team"`
	Total             float64            `json:"total"`
	MeasurementCount  int                `json:"measurement_count"`
	AreaCount         int                `json:"area_count"`
	AreaIDs           []string           `json:"area_ids"`
	MaxNodeDistance   float64            `json:"max_node_distance"`
	MaxSignalStrength float64            `json:"max_signal_strength"`
	MinSignalStrength float64            `json:"min_signal_strength"`
	Awards            map[string]float64 `json:"awards"`
}

// Report is the outcome of a scoring run with its supporting detail.
type Report struct {
	Standings   []domain.Standing        `json:"standings"`
	Teams       []TeamReport             `json:"teams"`
	Maxima      domain.LeaderboardMaxima `json:"maxima"`
	RowsScored  int                      `json:"rows_scored"`
	RowsSkipped int                      `json:"rows_skipped"`
	UnknownTags []UnknownTag             `json:"unknown_tags,omitempty"`
}

// Score runs the full pipeline and returns the ranked standings.
func (s *Scorer) Score(ctx context.Context, rows []domain.RawRow) ([]domain.Standing, error) {
	report, err := s.Report(ctx, rows)
	if err != nil {
		return nil, err
	}
	return report.Standings, nil
}

// Report runs the full pipeline and returns standings with a per-team
// breakdown, the leaderboard maxima, and row diagnostics.
func (s *Scorer) Report(ctx context.Context, rows []domain.RawRow) (*Report, error) {
	_, span := s.tracer.Start(ctx, "Scorer.Report",
		trace.WithAttributes(attribute.Int("rows.count", len(rows))),
	)
	defer span.End()

	start := time.Now()
	labels := map[string]string{"unit": scorerUnit}

	tally, err := s.aggregator.Aggregate(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordCounter(MetricScoreRuns, 1, map[string]string{"unit": scorerUnit, "status": "error"})
		s.logger.ErrorContext(ctx, "scoring run failed", "rows", len(rows), "error", err)
		return nil, err
	}

	teams := tally.Teams()
	maxima := AssignLeaderboardBonuses(teams, s.rules)
	standings := Rank(teams)

	for _, u := range tally.UnknownTags {
		s.logger.WarnContext(ctx, "ignoring unknown bonus tag",
			"row_id", u.RowID, "team", u.Team, "tag", u.Tag, "suggestion", u.Suggestion)
	}

	report := &Report{
		Standings:   standings,
		Teams:       buildTeamReports(teams, standings),
		Maxima:      maxima,
		RowsScored:  tally.RowsScored,
		RowsSkipped: tally.RowsSkipped,
		UnknownTags: tally.UnknownTags,
	}

	elapsed := time.Since(start)
	span.SetAttributes(
		attribute.Int("rows.scored", tally.RowsScored),
		attribute.Int("rows.skipped", tally.RowsSkipped),
		attribute.Int("teams.count", len(teams)),
		attribute.Int("tags.unknown", len(tally.UnknownTags)),
		attribute.Int64("latency_ms", elapsed.Milliseconds()),
	)

	s.metrics.RecordLatency(OperationScoreRun, elapsed, labels)
	s.metrics.RecordCounter(MetricScoreRuns, 1, map[string]string{"unit": scorerUnit, "status": "success"})
	s.metrics.RecordCounter(MetricRowsScored, float64(tally.RowsScored), labels)
	s.metrics.RecordCounter(MetricRowsSkipped, float64(tally.RowsSkipped), labels)
	s.metrics.RecordCounter(MetricUnknownTags, float64(len(tally.UnknownTags)), labels)
	s.metrics.RecordGauge(MetricTeams, float64(len(teams)), labels)
	for _, st := range standings {
		s.metrics.RecordHistogram(MetricTeamTotal, st.Total, labels)
	}

	s.logger.InfoContext(ctx, "scoring run complete",
		"rows", len(rows),
		"scored", tally.RowsScored,
		"skipped", tally.RowsSkipped,
		"teams", len(teams),
		"elapsed", elapsed,
	)
	return report, nil
}

// buildTeamReports orders the team breakdown like the standings.
func buildTeamReports(teams []*domain.TeamStats, standings []domain.Standing) []TeamReport {
	byName := make(map[string]*domain.TeamStats, len(teams))
	for _, t := range teams {
		byName[t.Team] = t
	}
	reports := make([]TeamReport, 0, len(standings))
	for i, st := range standings {
		t := byName[st.Team]
		reports = append(reports, TeamReport{
			Rank:              i + 1,
			Team:              t.Team,
			Total:             t.Total,
			MeasurementCount:  t.MeasurementCount,
			AreaCount:         t.AreaCount(),
			AreaIDs:           t.AreaIDs(),
			MaxNodeDistance:   t.MaxNodeDistance,
			MaxSignalStrength: t.MaxSignalStrength,
			MinSignalStrength: t.MinSignalStrength,
			Awards:            t.Awards(),
		})
	}
	return reports
}

// defaultScorer is built once from DefaultRules, which always validate.
var defaultScorer = func() *Scorer {
	s, err := NewScorer(DefaultRules())
	if err != nil {
		panic("scoring: default rules invalid: " + err.Error())
	}
	return s
}()

// Score ranks rows with the default rules.
func Score(rows []domain.RawRow) ([]domain.Standing, error) {
	return defaultScorer.Score(context.Background(), rows)
}
