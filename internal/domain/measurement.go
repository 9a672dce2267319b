package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// RowWidth is the number of positional columns in a measurement row.
const RowWidth = 11

// Column positions within a RawRow.
const (
	ColID = iota
	ColTeam
	ColReferenceNode
	ColSignalStrength
	ColLocation
	ColNotes
	ColPhoto
	ColCoordinates
	ColAreaID
	ColNodeDistance
	ColBonusTags
)

// columnNames is indexed by column position and used in row errors.
var columnNames = [RowWidth]string{
	"id",
	"team",
	"reference_node",
	"signal_strength",
	"location",
	"notes",
	"photo",
	"coordinates",
	"area_id",
	"node_distance",
	"bonus_tags",
}

// ColumnName returns the name of the column at position col.
func ColumnName(col int) string {
	if col < 0 || col >= RowWidth {
		return "column_" + strconv.Itoa(col)
	}
	return columnNames[col]
}

// ColumnNames returns the header names in column order.
func ColumnNames() []string { return slices.Clone(columnNames[:]) }

// RawRow is one spreadsheet row of a measurement log, in column order.
// Columns ColLocation through ColCoordinates are free text that the scorer
// ignores.
type RawRow [RowWidth]string

// NewRawRow builds a row from a variable number of cells. Missing trailing
// cells are left empty and extra cells are dropped.
func NewRawRow(cells ...string) RawRow {
	var row RawRow
	copy(row[:], cells)
	return row
}

// Measurement is a parsed, immutable measurement row.
type Measurement struct {
	id             string
	team           string
	referenceNode  string
	signalStrength float64
	areaID         string
	nodeDistance   float64
	tags           []string
}

// ID returns the source row id.
func (m Measurement) ID() string { return m.id }

// Team returns the non-empty team name.
func (m Measurement) Team() string { return m.team }

// ReferenceNode returns the name of the node the distance was measured from.
func (m Measurement) ReferenceNode() string { return m.referenceNode }

// SignalStrength returns the reading in dBm.
func (m Measurement) SignalStrength() float64 { return m.signalStrength }

// AreaID returns the pre-resolved block group id.
func (m Measurement) AreaID() string { return m.areaID }

// NodeDistance returns the distance to the reference node in miles.
func (m Measurement) NodeDistance() float64 { return m.nodeDistance }

// Tags returns a copy of the subjective bonus tags.
func (m Measurement) Tags() []string { return slices.Clone(m.tags) }

// ParseMeasurement normalizes one raw row into a Measurement.
//
// A row without a team returns ErrMissingTeam; callers skip such rows.
// Empty area ids, distances and signal readings return a *RowError wrapping
// ErrUnresolvedField, and unparseable numbers a *RowError wrapping
// ErrMalformedNumber, so unresolved upstream values never score as zero.
func ParseMeasurement(row RawRow) (Measurement, error) {
	id := strings.TrimSpace(row[ColID])
	team := strings.TrimSpace(row[ColTeam])
	if team == "" {
		return Measurement{}, ErrMissingTeam
	}

	signal, err := parseNumber(row[ColSignalStrength])
	if err != nil {
		return Measurement{}, NewRowError(id, ColumnName(ColSignalStrength), err)
	}

	areaID := strings.TrimSpace(row[ColAreaID])
	if areaID == "" {
		return Measurement{}, NewRowError(id, ColumnName(ColAreaID), ErrUnresolvedField)
	}

	distance, err := parseNumber(row[ColNodeDistance])
	if err != nil {
		return Measurement{}, NewRowError(id, ColumnName(ColNodeDistance), err)
	}

	return Measurement{
		id:             id,
		team:           team,
		referenceNode:  strings.TrimSpace(row[ColReferenceNode]),
		signalStrength: signal,
		areaID:         areaID,
		nodeDistance:   distance,
		tags:           SplitTags(row[ColBonusTags]),
	}, nil
}

// SplitTags splits a comma separated tag list and trims each tag. Empty
// pieces are dropped, so a blank field yields an empty, non-nil slice.
func SplitTags(field string) []string {
	tags := make([]string, 0)
	if strings.TrimSpace(field) == "" {
		return tags
	}
	for piece := range strings.SplitSeq(field, ",") {
		if tag := strings.TrimSpace(piece); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func parseNumber(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, ErrUnresolvedField
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}
	return v, nil
}
