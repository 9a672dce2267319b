// Package domain contains pure, dependency-free domain models and types
// for the signal hunt scorer.
package domain

import (
	"maps"
	"slices"
	"strings"
)

// Structural categories awarded by the scorer itself rather than selected
// as subjective tags.
const (
	// CategoryMeasurement is awarded once for every valid measurement.
	CategoryMeasurement = "Measurement"

	// CategoryGoodSignal is awarded for a measurement stronger than the
	// good-signal threshold.
	CategoryGoodSignal = "Good Signal"

	// CategoryMostMeasurements is awarded to every team tied for the
	// highest measurement count.
	CategoryMostMeasurements = "Most Measurements"

	// CategoryManyAreas is awarded to every team that measured in at least
	// the configured number of distinct areas.
	CategoryManyAreas = "Many Areas"

	// CategoryMostBlockGroups is awarded to every team tied for the most
	// distinct block groups.
	CategoryMostBlockGroups = "Most Block Groups"

	// CategoryMaxSupernodeDistance is awarded to every team tied for the
	// furthest measurement from its reference node.
	CategoryMaxSupernodeDistance = "Max Supernode Distance"

	// CategoryMaxSignalStrength is awarded to every team tied for the
	// strongest single reading.
	CategoryMaxSignalStrength = "Max Signal Strength"

	// CategoryFurthestPairDistance and CategoryFurthestFromOtherTeams name
	// aggregate bonuses that need pairwise geometry. They are listed in the
	// table but never awarded.
	CategoryFurthestPairDistance   = "Furthest Distance Between Measurements"
	CategoryFurthestFromOtherTeams = "Furthest Distance From Other Teams"
)

// StructuralCategories lists the categories the scorer awards on its own.
var StructuralCategories = []string{
	CategoryMeasurement,
	CategoryGoodSignal,
	CategoryMostMeasurements,
	CategoryManyAreas,
	CategoryMostBlockGroups,
	CategoryMaxSupernodeDistance,
	CategoryMaxSignalStrength,
}

// defaultPoints is the stock point table for an event. Subjective entries
// are curated per event and are usually overridden from configuration.
var defaultPoints = map[string]float64{
	CategoryMeasurement:          10,
	CategoryGoodSignal:           10,
	CategoryMostMeasurements:     30,
	CategoryManyAreas:            40,
	CategoryMostBlockGroups:      50,
	CategoryMaxSupernodeDistance: 20,
	CategoryMaxSignalStrength:    20,

	CategoryFurthestPairDistance:   20,
	CategoryFurthestFromOtherTeams: 20,

	"Location & Contact Info":     30,
	"Longest Dance Party/Karaoke": 20,
	"Best Team Photo":             10,
	"Best Costume":                15,
	"Hidden Node Found":           25,
	"Talked To A Neighbor":        10,
	"Indoor Measurement":          0,
	"Photo Of Antenna":            0,
	"Needed Rescue":               -10,
	"Late Check-In":               -5,
}

// CategoryTable maps a category name to its point value. Values may be zero
// or negative. A table is read-only once built; use Clone and With to
// derive new tables.
type CategoryTable struct {
	points map[string]float64
}

// NewCategoryTable builds a table from the given entries. The map is copied
// so later changes by the caller are not observed. Names are trimmed.
func NewCategoryTable(points map[string]float64) CategoryTable {
	cp := make(map[string]float64, len(points))
	for name, value := range points {
		cp[strings.TrimSpace(name)] = value
	}
	return CategoryTable{points: cp}
}

// DefaultCategoryTable returns the stock point table.
func DefaultCategoryTable() CategoryTable { return NewCategoryTable(defaultPoints) }

// Lookup returns the point value for name and whether the name is present.
// A present entry with a zero value reports true.
func (t CategoryTable) Lookup(name string) (float64, bool) {
	v, ok := t.points[name]
	return v, ok
}

// Points returns the point value for name, or zero if it is absent.
func (t CategoryTable) Points(name string) float64 { return t.points[name] }

// Len returns the number of categories.
func (t CategoryTable) Len() int { return len(t.points) }

// Names returns every category name in lexical order.
func (t CategoryTable) Names() []string {
	return slices.Sorted(maps.Keys(t.points))
}

// Entries returns a copy of the underlying mapping.
func (t CategoryTable) Entries() map[string]float64 { return maps.Clone(t.points) }

// With returns a new table with overrides applied on top of t.
func (t CategoryTable) With(overrides map[string]float64) CategoryTable {
	merged := maps.Clone(t.points)
	if merged == nil {
		merged = make(map[string]float64, len(overrides))
	}
	for name, value := range overrides {
		merged[strings.TrimSpace(name)] = value
	}
	return CategoryTable{points: merged}
}

// Validate reports structural categories missing from the table and empty
// category names.
func (t CategoryTable) Validate() error {
	verr := NewValidationError("CategoryTable")
	for _, name := range StructuralCategories {
		if _, ok := t.points[name]; !ok {
			verr.AddError("missing structural category " + name)
		}
	}
	if _, ok := t.points[""]; ok {
		verr.AddError("empty category name")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
