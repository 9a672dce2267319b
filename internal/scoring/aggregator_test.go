package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-signalhunt/internal/domain"
	"github.com/ahrav/go-signalhunt/internal/testutils"
)

func newTestAggregator(t *testing.T, rules Rules) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(rules)
	require.NoError(t, err)
	return agg
}

func TestAggregator_Totals(t *testing.T) {
	tests := []struct {
		name      string
		rows      []domain.RawRow
		team      string
		wantTotal float64
		wantCount int
	}{
		{
			name: "weak signals earn only the measurement points",
			rows: []domain.RawRow{
				testutils.Row("Team A", -80, "a1", 1),
				testutils.Row("Team A", -88, "a1", 1),
			},
			team:      "Team A",
			wantTotal: 20,
			wantCount: 2,
		},
		{
			name: "one good signal earns the bonus once",
			rows: []domain.RawRow{
				testutils.Row("Team A", -80, "a1", 1),
				testutils.Row("Team A", -50, "a1", 1),
			},
			team:      "Team A",
			wantTotal: 30,
			wantCount: 2,
		},
		{
			name: "threshold comparison is strict",
			rows: []domain.RawRow{
				testutils.Row("Team A", -70, "a1", 1),
			},
			team:      "Team A",
			wantTotal: 10,
			wantCount: 1,
		},
		{
			name: "subjective tags add their points",
			rows: []domain.RawRow{
				testutils.Row("Team A", -65, "a1", 1, "Location & Contact Info", "Longest Dance Party/Karaoke"),
			},
			team:      "Team A",
			wantTotal: 70,
			wantCount: 1,
		},
		{
			name: "zero and negative tags apply",
			rows: []domain.RawRow{
				testutils.Row("Team A", -90, "a1", 1, "Indoor Measurement", "Needed Rescue"),
			},
			team:      "Team A",
			wantTotal: 0,
			wantCount: 1,
		},
		{
			name: "unknown tags are ignored",
			rows: []domain.RawRow{
				testutils.Row("Team A", -90, "a1", 1, "Bribed A Judge"),
			},
			team:      "Team A",
			wantTotal: 10,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := newTestAggregator(t, DefaultRules())

			tally, err := agg.Aggregate(tt.rows)
			require.NoError(t, err)

			stats, ok := tally.Team(tt.team)
			require.True(t, ok)
			assert.Equal(t, tt.wantTotal, stats.Total)
			assert.Equal(t, tt.wantCount, stats.MeasurementCount)
		})
	}
}

func TestAggregator_SkipsRowsWithoutTeam(t *testing.T) {
	agg := newTestAggregator(t, DefaultRules())

	rows := []domain.RawRow{
		testutils.Row("", -50, "a1", 1),
		testutils.Row("  ", -50, "a1", 1),
		testutils.Row("Team A", -80, "a1", 1),
		{},
	}
	tally, err := agg.Aggregate(rows)
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Len())
	assert.Equal(t, 1, tally.RowsScored)
	assert.Equal(t, 3, tally.RowsSkipped)
}

func TestAggregator_RunningStatistics(t *testing.T) {
	agg := newTestAggregator(t, DefaultRules())

	rows := []domain.RawRow{
		testutils.Row("Team A", -75, "a1", 1.25),
		testutils.Row("Team A", -55, "a2", 0.5),
		testutils.Row("Team A", -95, "a1", 2.75),
		testutils.Row("Team B", -60, "b1", 0.1),
	}
	tally, err := agg.Aggregate(rows)
	require.NoError(t, err)

	a, ok := tally.Team("Team A")
	require.True(t, ok)
	assert.Equal(t, 3, a.MeasurementCount)
	assert.Equal(t, []string{"a1", "a2"}, a.AreaIDs())
	assert.Equal(t, 2.75, a.MaxNodeDistance)
	assert.Equal(t, -55.0, a.MaxSignalStrength)
	assert.Equal(t, -95.0, a.MinSignalStrength)

	assert.Equal(t, []string{"Team A", "Team B"}, teamNames(tally.Teams()), "first appearance order")
}

func TestAggregator_MinSignalSeededAtZero(t *testing.T) {
	agg := newTestAggregator(t, DefaultRules())

	tally, err := agg.Aggregate([]domain.RawRow{
		testutils.Row("Team A", 5, "a1", 1),
		testutils.Row("Team A", 12, "a1", 1),
	})
	require.NoError(t, err)

	a, _ := tally.Team("Team A")
	assert.Equal(t, 0.0, a.MinSignalStrength, "minimum stays at its zero seed")
	assert.Equal(t, 12.0, a.MaxSignalStrength)
}

func TestAggregator_OrderIndependentWithinTeam(t *testing.T) {
	agg := newTestAggregator(t, DefaultRules())
	rows := testutils.GenerateRows(testutils.DefaultGeneratorConfig(), 11)

	reversed := make([]domain.RawRow, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}

	forward, err := agg.Aggregate(rows)
	require.NoError(t, err)
	backward, err := agg.Aggregate(reversed)
	require.NoError(t, err)

	require.Equal(t, forward.Len(), backward.Len())
	for _, f := range forward.Teams() {
		b, ok := backward.Team(f.Team)
		require.True(t, ok)
		assert.InDelta(t, f.Total, b.Total, 1e-9, f.Team)
		assert.Equal(t, f.MeasurementCount, b.MeasurementCount)
		assert.Equal(t, f.AreaIDs(), b.AreaIDs())
		assert.Equal(t, f.MaxNodeDistance, b.MaxNodeDistance)
		assert.Equal(t, f.MaxSignalStrength, b.MaxSignalStrength)
		assert.Equal(t, f.MinSignalStrength, b.MinSignalStrength)
	}
}

func TestAggregator_UnresolvedRowFailsRun(t *testing.T) {
	agg := newTestAggregator(t, DefaultRules())

	row := testutils.Row("Team A", -60, "a1", 1)
	row[domain.ColAreaID] = ""

	_, err := agg.Aggregate([]domain.RawRow{testutils.Row("Team B", -60, "b1", 1), row})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnresolvedField)
	assert.Contains(t, err.Error(), "row 1")
}

func TestAggregator_InvalidRules(t *testing.T) {
	rules := DefaultRules()
	rules.ManyAreasThreshold = 0
	_, err := NewAggregator(rules)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	rules = DefaultRules()
	rules.Categories = domain.NewCategoryTable(map[string]float64{"Only": 1})
	_, err = NewAggregator(rules)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func teamNames(teams []*domain.TeamStats) []string {
	names := make([]string, 0, len(teams))
	for _, s := range teams {
		names = append(names, s.Team)
	}
	return names
}
