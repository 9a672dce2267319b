// Package testutils provides utilities for testing, including row builders
// and synthetic dataset generators. These components are intended for
// internal use within the project's test suites and tools and are not part
// of the public API.
package testutils

import (
	"strconv"
	"strings"

	"github.com/ahrav/go-signalhunt/internal/domain"
)

// DefaultNode is the reference node used by row builders.
const DefaultNode = "Tucson House"

// RowSpec describes one measurement row in tests. Zero values are filled in
// by Build with a resolved area and distance so only the fields under test
// need to be set.
type RowSpec struct {
	ID       string
	Team     string
	Node     string
	Signal   float64
	Location string
	AreaID   string
	Distance float64
	Tags     []string
}

// Build renders the row description as a raw row.
func (s RowSpec) Build() domain.RawRow {
	node := s.Node
	if node == "" {
		node = DefaultNode
	}
	area := s.AreaID
	if area == "" {
		area = "040190000001"
	}
	return domain.NewRawRow(
		s.ID,
		s.Team,
		node,
		FormatFloat(s.Signal),
		s.Location,
		"",
		"",
		"",
		area,
		FormatFloat(s.Distance),
		strings.Join(s.Tags, ", "),
	)
}

// Row is shorthand for a row with a team, signal, area and distance.
func Row(team string, signal float64, area string, distance float64, tags ...string) domain.RawRow {
	return RowSpec{Team: team, Signal: signal, AreaID: area, Distance: distance, Tags: tags}.Build()
}

// Rows builds every row description in order, numbering ids from 1 when unset.
func Rows(specs ...RowSpec) []domain.RawRow {
	rows := make([]domain.RawRow, 0, len(specs))
	for i, s := range specs {
		if s.ID == "" {
			s.ID = strconv.Itoa(i + 1)
		}
		rows = append(rows, s.Build())
	}
	return rows
}

// FormatFloat renders f with the shortest representation that round-trips,
// so parsed values compare equal bit for bit.
func FormatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
