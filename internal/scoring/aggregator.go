package scoring

import (
	"errors"
	"fmt"

	"github.com/ahrav/go-signalhunt/internal/domain"
)

// Tally is the result of the per-team pass: one TeamStats record per
// distinct team, in order of first appearance.
type Tally struct {
	order []*domain.TeamStats
	index map[string]*domain.TeamStats

	// RowsScored counts rows that produced a measurement.
	RowsScored int
	// RowsSkipped counts rows dropped for lacking a team name.
	RowsSkipped int
	// UnknownTags lists every tag that matched no category.
	UnknownTags []UnknownTag
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{index: make(map[string]*domain.TeamStats)}
}

// Teams returns the team records in order of first appearance. The records
// are shared with the tally.
func (t *Tally) Teams() []*domain.TeamStats { return t.order }

// Team returns the record for name.
func (t *Tally) Team(name string) (*domain.TeamStats, bool) {
	s, ok := t.index[name]
	return s, ok
}

// Len returns the number of teams.
func (t *Tally) Len() int { return len(t.order) }

func (t *Tally) lookupOrCreate(team string) *domain.TeamStats {
	if s, ok := t.index[team]; ok {
		return s
	}
	s := domain.NewTeamStats(team)
	t.index[team] = s
	t.order = append(t.order, s)
	return s
}

// Aggregator folds measurement rows into per-team statistics.
// It holds only immutable rules and is safe for concurrent use; every call
// to Aggregate works on its own Tally.
type Aggregator struct {
	rules Rules
	tags  *tagMatcher
}

// NewAggregator creates an Aggregator for the given rules.
func NewAggregator(rules Rules) (*Aggregator, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{
		rules: rules,
		tags:  newTagMatcher(rules.Categories, rules.CaseInsensitiveTags),
	}, nil
}

// Aggregate parses every row and folds it into a fresh Tally.
// Rows without a team are skipped. Any other parse failure aborts the run,
// as does an unknown tag when strict tag checking is enabled.
func (a *Aggregator) Aggregate(rows []domain.RawRow) (*Tally, error) {
	tally := NewTally()
	for i, row := range rows {
		m, err := domain.ParseMeasurement(row)
		if errors.Is(err, domain.ErrMissingTeam) {
			tally.RowsSkipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if err := a.Add(tally, m); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return tally, nil
}

// Add folds a single measurement into the tally.
func (a *Aggregator) Add(tally *Tally, m domain.Measurement) error {
	categories := a.rules.Categories
	stats := tally.lookupOrCreate(m.Team())

	stats.MeasurementCount++
	stats.Award(domain.CategoryMeasurement, categories.Points(domain.CategoryMeasurement))

	signal := m.SignalStrength()
	if signal > a.rules.GoodSignalThreshold {
		stats.Award(domain.CategoryGoodSignal, categories.Points(domain.CategoryGoodSignal))
	}
	stats.MaxSignalStrength = max(stats.MaxSignalStrength, signal)
	stats.MinSignalStrength = min(stats.MinSignalStrength, signal)

	for _, tag := range m.Tags() {
		name, points, ok := a.tags.match(tag)
		if !ok {
			suggestion := a.tags.suggest(tag)
			if a.rules.StrictTags {
				err := fmt.Errorf("%w: %q", domain.ErrUnknownTag, tag)
				if suggestion != "" {
					err = fmt.Errorf("%w (did you mean %q?)", err, suggestion)
				}
				return domain.NewRowError(m.ID(), domain.ColumnName(domain.ColBonusTags), err)
			}
			tally.UnknownTags = append(tally.UnknownTags, UnknownTag{
				RowID:      m.ID(),
				Team:       m.Team(),
				Tag:        tag,
				Suggestion: suggestion,
			})
			continue
		}
		stats.Award(name, points)
	}

	stats.AddArea(m.AreaID())
	stats.MaxNodeDistance = max(stats.MaxNodeDistance, m.NodeDistance())

	tally.RowsScored++
	return nil
}
