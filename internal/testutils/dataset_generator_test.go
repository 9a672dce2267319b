package testutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-signalhunt/internal/domain"
)

func TestGenerateRows_Deterministic(t *testing.T) {
	cfg := DefaultGeneratorConfig()

	a := GenerateRows(cfg, 42)
	b := GenerateRows(cfg, 42)

	require.Len(t, a, cfg.Rows)
	assert.Equal(t, a, b, "same seed should produce the same rows")
}

func TestGenerateRows_RowsParse(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.BlankTeamRate = 0

	for _, row := range GenerateRows(cfg, 7) {
		m, err := domain.ParseMeasurement(row)
		require.NoError(t, err)
		assert.NotEmpty(t, m.Team())
		assert.GreaterOrEqual(t, m.SignalStrength(), -100.0)
		assert.Less(t, m.SignalStrength(), -30.0)
	}
}

func TestRowSpec_Build(t *testing.T) {
	row := RowSpec{Team: "Team A", Signal: -65, Distance: 0.6637975665, Tags: []string{"a", "b"}}.Build()

	assert.Equal(t, "Team A", row[domain.ColTeam])
	assert.Equal(t, DefaultNode, row[domain.ColReferenceNode])
	assert.Equal(t, "-65", row[domain.ColSignalStrength])
	assert.Equal(t, "0.6637975665", row[domain.ColNodeDistance])
	assert.Equal(t, "a, b", row[domain.ColBonusTags])
	assert.NotEmpty(t, row[domain.ColAreaID])
}
