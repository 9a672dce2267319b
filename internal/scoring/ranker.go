package scoring

import (
	"cmp"
	"slices"

	"github.com/ahrav/go-signalhunt/internal/domain"
)

// Rank orders teams by total score, highest first, and projects them to
// standings. Equal totals keep their input order, but callers should not
// depend on any particular order among ties.
func Rank(teams []*domain.TeamStats) []domain.Standing {
	standings := make([]domain.Standing, 0, len(teams))
	for _, s := range teams {
		standings = append(standings, domain.Standing{Team: s.Team, Total: s.Total})
	}
	slices.SortStableFunc(standings, func(a, b domain.Standing) int {
		return cmp.Compare(b.Total, a.Total)
	})
	return standings
}
