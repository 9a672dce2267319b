package domain

import "strconv"

// Sighting is a measurement as reported from the field, before the area id
// and reference-node distance have been resolved from its coordinates.
type Sighting struct {
	ID             string
	Team           string
	ReferenceNode  string
	SignalStrength string
	Location       string
	Notes          string
	Photo          string
	Latitude       float64
	Longitude      float64
	BonusTags      string
}

// ToRawRow renders the sighting as a row with the resolved area id and node
// distance filled in. Coordinates are kept in the free-text column.
func (s Sighting) ToRawRow(areaID string, nodeDistance float64) RawRow {
	var row RawRow
	row[ColID] = s.ID
	row[ColTeam] = s.Team
	row[ColReferenceNode] = s.ReferenceNode
	row[ColSignalStrength] = s.SignalStrength
	row[ColLocation] = s.Location
	row[ColNotes] = s.Notes
	row[ColPhoto] = s.Photo
	row[ColCoordinates] = strconv.FormatFloat(s.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(s.Longitude, 'f', -1, 64)
	row[ColAreaID] = areaID
	row[ColNodeDistance] = strconv.FormatFloat(nodeDistance, 'g', -1, 64)
	row[ColBonusTags] = s.BonusTags
	return row
}
