package testutils

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/ahrav/go-signalhunt/internal/domain"
)

// GeneratorConfig controls synthetic measurement logs.
type GeneratorConfig struct {
	// Rows is the number of rows to generate.
	Rows int
	// Teams is the number of distinct teams.
	Teams int
	// Areas is the number of distinct block groups rows are spread over.
	Areas int
	// BlankTeamRate is the fraction of rows emitted without a team.
	BlankTeamRate float64
	// TagRate is the chance that a row carries subjective tags.
	TagRate float64
	// Tags is the pool tags are drawn from. Unknown names are allowed.
	Tags []string
}

// DefaultGeneratorConfig returns a small, realistic event.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Rows:          200,
		Teams:         6,
		Areas:         12,
		BlankTeamRate: 0.05,
		TagRate:       0.3,
		Tags: []string{
			"Location & Contact Info",
			"Longest Dance Party/Karaoke",
			"Best Team Photo",
			"Indoor Measurement",
			"Needed Rescue",
		},
	}
}

// nodeNames is the pool of reference nodes for generated rows.
var nodeNames = []string{"Tucson House", "Milagro", "Barrio Anita", "Dunbar Spring"}

// GenerateRows creates a synthetic measurement log.
// The seed parameter controls randomization - use time.Now().UnixNano() for
// non-deterministic generation or a fixed value for reproducible tests.
func GenerateRows(cfg GeneratorConfig, seed int64) []domain.RawRow {
	rng := rand.New(rand.NewSource(seed))
	teams := max(cfg.Teams, 1)
	areas := max(cfg.Areas, 1)

	rows := make([]domain.RawRow, 0, cfg.Rows)
	for i := range cfg.Rows {
		team := fmt.Sprintf("Team %02d", rng.Intn(teams)+1)
		if rng.Float64() < cfg.BlankTeamRate {
			team = ""
		}

		var tags []string
		if len(cfg.Tags) > 0 && rng.Float64() < cfg.TagRate {
			for range rng.Intn(2) + 1 {
				tags = append(tags, cfg.Tags[rng.Intn(len(cfg.Tags))])
			}
		}

		rows = append(rows, RowSpec{
			ID:       fmt.Sprintf("%d", i+1),
			Team:     team,
			Node:     nodeNames[rng.Intn(len(nodeNames))],
			Signal:   float64(-100 + rng.Intn(70)),
			Location: fmt.Sprintf("Stop %d", i+1),
			AreaID:   fmt.Sprintf("0401900%05d", rng.Intn(areas)+1),
			Distance: math.Round(rng.Float64()*300) / 100,
			Tags:     tags,
		}.Build())
	}
	return rows
}

// GenerateRowsDefault creates a default-sized log with a time-based seed.
func GenerateRowsDefault() []domain.RawRow {
	return GenerateRows(DefaultGeneratorConfig(), time.Now().UnixNano())
}
