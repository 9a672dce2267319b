package domain

import (
	"maps"
	"slices"
)

// Seeds for the running signal statistics. The minimum is seeded at zero,
// so a run whose readings are all positive reports a minimum of zero.
const (
	SignalStrengthFloor = -1000.0
	MinSignalSeed       = 0.0
)

// TeamStats holds the running statistics and score for a single team.
// It is created on the team's first measurement, updated for each further
// measurement, and updated once more when leaderboard bonuses are applied.
type TeamStats struct {
	// Team is the team name and the key of the record.
	Team string `json:"team"`

	// Total is the accumulated score.
	Total float64 `json:"total"`

	// MeasurementCount is the number of valid rows attributed to the team.
	MeasurementCount int `json:"measurement_count"`

	// MaxNodeDistance is the furthest reported distance from a reference node.
	MaxNodeDistance float64 `json:"max_node_distance"`

	// MaxSignalStrength is the strongest reading seen.
	MaxSignalStrength float64 `json:"max_signal_strength"`

	// MinSignalStrength is the weakest reading seen, seeded at MinSignalSeed.
	MinSignalStrength float64 `json:"min_signal_strength"`

	areas  map[string]struct{}
	awards map[string]float64
}

// NewTeamStats returns an empty record for team.
func NewTeamStats(team string) *TeamStats {
	return &TeamStats{
		Team:              team,
		MaxSignalStrength: SignalStrengthFloor,
		MinSignalStrength: MinSignalSeed,
		areas:             make(map[string]struct{}),
		awards:            make(map[string]float64),
	}
}

// Award adds points under category to the total and the breakdown.
func (s *TeamStats) Award(category string, points float64) {
	s.Total += points
	s.awards[category] += points
}

// AddArea records a distinct area id. Duplicates are ignored.
func (s *TeamStats) AddArea(areaID string) { s.areas[areaID] = struct{}{} }

// HasArea reports whether the team measured in areaID.
func (s *TeamStats) HasArea(areaID string) bool {
	_, ok := s.areas[areaID]
	return ok
}

// AreaCount returns the number of distinct areas.
func (s *TeamStats) AreaCount() int { return len(s.areas) }

// AreaIDs returns the distinct areas in lexical order.
func (s *TeamStats) AreaIDs() []string { return slices.Sorted(maps.Keys(s.areas)) }

// Awards returns a copy of the per-category point breakdown.
func (s *TeamStats) Awards() map[string]float64 { return maps.Clone(s.awards) }

// Clone returns a deep copy of s.
func (s *TeamStats) Clone() *TeamStats {
	cp := *s
	cp.areas = maps.Clone(s.areas)
	cp.awards = maps.Clone(s.awards)
	return &cp
}

// LeaderboardMaxima is the per-statistic extreme across every team in one
// scoring run. It is only used to detect ties for aggregate bonuses.
type LeaderboardMaxima struct {
	MaxAreaCount        int     `json:"max_area_count"`
	MaxMeasurementCount int     `json:"max_measurement_count"`
	MaxNodeDistance     float64 `json:"max_node_distance"`
	MaxSignalStrength   float64 `json:"max_signal_strength"`
	MinSignalStrength   float64 `json:"min_signal_strength"`
}

// Standing is one row of the final leaderboard.
type Standing struct {
	Team  string  `json:"team"`
	Total float64 `json:"total"`
}
