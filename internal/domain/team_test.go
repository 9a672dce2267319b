package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTeamStats_Seeds(t *testing.T) {
	s := NewTeamStats("Team A")

	assert.Equal(t, "Team A", s.Team)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.MeasurementCount)
	assert.Zero(t, s.MaxNodeDistance)
	assert.Equal(t, -1000.0, s.MaxSignalStrength)
	assert.Equal(t, 0.0, s.MinSignalStrength)
	assert.Zero(t, s.AreaCount())
	assert.Empty(t, s.Awards())
}

func TestTeamStats_AwardAndAreas(t *testing.T) {
	s := NewTeamStats("Team A")
	s.Award(CategoryMeasurement, 10)
	s.Award(CategoryMeasurement, 10)
	s.Award("Needed Rescue", -10)
	s.AddArea("b")
	s.AddArea("a")
	s.AddArea("b")

	assert.Equal(t, 10.0, s.Total)
	assert.Equal(t, map[string]float64{CategoryMeasurement: 20, "Needed Rescue": -10}, s.Awards())
	assert.Equal(t, 2, s.AreaCount())
	assert.Equal(t, []string{"a", "b"}, s.AreaIDs())
	assert.True(t, s.HasArea("a"))
	assert.False(t, s.HasArea("c"))
}

func TestTeamStats_Clone(t *testing.T) {
	s := NewTeamStats("Team A")
	s.AddArea("a")
	s.Award(CategoryMeasurement, 10)

	cp := s.Clone()
	cp.AddArea("b")
	cp.Award(CategoryGoodSignal, 10)

	assert.Equal(t, 1, s.AreaCount())
	assert.Equal(t, 10.0, s.Total)
	assert.Equal(t, 2, cp.AreaCount())
	assert.Equal(t, 20.0, cp.Total)
}
