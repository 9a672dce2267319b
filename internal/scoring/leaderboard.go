package scoring

import (
	"github.com/ahrav/go-signalhunt/internal/domain"
)

// ComputeMaxima scans every team once and returns the leaderboard-wide
// extremes. The maximum distance and minimum signal are seeded at zero and
// the maximum signal at domain.SignalStrengthFloor, matching the per-team
// seeds.
func ComputeMaxima(teams []*domain.TeamStats) domain.LeaderboardMaxima {
	maxima := domain.LeaderboardMaxima{
		MaxSignalStrength: domain.SignalStrengthFloor,
		MinSignalStrength: domain.MinSignalSeed,
	}
	for _, s := range teams {
		maxima.MaxAreaCount = max(maxima.MaxAreaCount, s.AreaCount())
		maxima.MaxMeasurementCount = max(maxima.MaxMeasurementCount, s.MeasurementCount)
		maxima.MaxNodeDistance = max(maxima.MaxNodeDistance, s.MaxNodeDistance)
		maxima.MaxSignalStrength = max(maxima.MaxSignalStrength, s.MaxSignalStrength)
		maxima.MinSignalStrength = min(maxima.MinSignalStrength, s.MinSignalStrength)
	}
	return maxima
}

// AssignLeaderboardBonuses grants the aggregate bonuses to every team and
// returns the maxima they were judged against. Every team tied with the
// maximum qualifies; comparisons use exact equality.
//
// It must only be called once every measurement has been aggregated.
func AssignLeaderboardBonuses(teams []*domain.TeamStats, rules Rules) domain.LeaderboardMaxima {
	maxima := ComputeMaxima(teams)
	categories := rules.Categories

	for _, s := range teams {
		areas := s.AreaCount()
		if areas == maxima.MaxAreaCount {
			s.Award(domain.CategoryMostBlockGroups, categories.Points(domain.CategoryMostBlockGroups))
		}
		if areas >= rules.ManyAreasThreshold {
			s.Award(domain.CategoryManyAreas, categories.Points(domain.CategoryManyAreas))
		}
		if s.MeasurementCount == maxima.MaxMeasurementCount {
			s.Award(domain.CategoryMostMeasurements, categories.Points(domain.CategoryMostMeasurements))
		}
		if s.MaxNodeDistance == maxima.MaxNodeDistance {
			s.Award(domain.CategoryMaxSupernodeDistance, categories.Points(domain.CategoryMaxSupernodeDistance))
		}
		if s.MaxSignalStrength == maxima.MaxSignalStrength {
			s.Award(domain.CategoryMaxSignalStrength, categories.Points(domain.CategoryMaxSignalStrength))
		}
	}
	return maxima
}
