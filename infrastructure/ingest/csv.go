// Package ingest reads and writes measurement logs exported from the event
// spreadsheet as CSV.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ahrav/go-signalhunt/internal/domain"
)

// Sighting CSV column positions.
const (
	sightingID = iota
	sightingTeam
	sightingNode
	sightingSignal
	sightingLocation
	sightingNotes
	sightingPhoto
	sightingLatitude
	sightingLongitude
	sightingTags
	sightingWidth
)

// SightingHeader is the header written before sighting records.
var SightingHeader = []string{
	"id", "team", "reference_node", "signal_strength", "location",
	"notes", "photo", "latitude", "longitude", "bonus_tags",
}

// ErrTooManyRecords is returned when an input exceeds the configured limit.
var ErrTooManyRecords = errors.New("too many records")

// Reader decodes measurement logs. The zero value reads any number of
// records.
type Reader struct {
	// MaxRecords bounds the number of data records read; zero means no
	// limit.
	MaxRecords int
}

// ReadRows reads measurement rows. A leading header row, recognized by an
// "id" first cell, is skipped. Short records are padded with empty cells
// and extra cells are dropped, matching how sheet exports trim trailing
// blanks.
func (rd Reader) ReadRows(r io.Reader) ([]domain.RawRow, error) {
	var rows []domain.RawRow
	err := rd.each(r, func(line int, record []string) error {
		rows = append(rows, domain.NewRawRow(record...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadSightings reads field sightings with raw coordinates.
func (rd Reader) ReadSightings(r io.Reader) ([]domain.Sighting, error) {
	var sightings []domain.Sighting
	err := rd.each(r, func(line int, record []string) error {
		var cells [sightingWidth]string
		copy(cells[:], record)

		lat, err := parseCoordinate(cells[sightingLatitude])
		if err != nil {
			return fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := parseCoordinate(cells[sightingLongitude])
		if err != nil {
			return fmt.Errorf("line %d: longitude: %w", line, err)
		}

		sightings = append(sightings, domain.Sighting{
			ID:             strings.TrimSpace(cells[sightingID]),
			Team:           cells[sightingTeam],
			ReferenceNode:  strings.TrimSpace(cells[sightingNode]),
			SignalStrength: strings.TrimSpace(cells[sightingSignal]),
			Location:       cells[sightingLocation],
			Notes:          cells[sightingNotes],
			Photo:          cells[sightingPhoto],
			Latitude:       lat,
			Longitude:      lon,
			BonusTags:      cells[sightingTags],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sightings, nil
}

// utf8BOM is the byte order mark spreadsheet tools prepend to exports.
var utf8BOM = []byte("\ufeff")

func (rd Reader) each(r io.Reader, fn func(line int, record []string) error) error {
	br := bufio.NewReader(r)
	if prefix, _ := br.Peek(len(utf8BOM)); bytes.Equal(prefix, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return fmt.Errorf("failed to read CSV: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	count := 0
	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV: %w", err)
		}
		if line == 1 && isHeader(record) {
			continue
		}
		if isBlank(record) {
			continue
		}
		count++
		if rd.MaxRecords > 0 && count > rd.MaxRecords {
			return fmt.Errorf("%w: limit is %d", ErrTooManyRecords, rd.MaxRecords)
		}
		if err := fn(line, record); err != nil {
			return err
		}
	}
}

// ReadRows reads measurement rows with no record limit.
func ReadRows(r io.Reader) ([]domain.RawRow, error) { return Reader{}.ReadRows(r) }

// ReadSightings reads sightings with no record limit.
func ReadSightings(r io.Reader) ([]domain.Sighting, error) { return Reader{}.ReadSightings(r) }

// WriteRows writes rows as CSV, preceded by a header when header is true.
func WriteRows(w io.Writer, rows []domain.RawRow, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(domain.ColumnNames()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for i, row := range rows {
		if err := cw.Write(row[:]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSightings writes sightings as CSV with a header.
func WriteSightings(w io.Writer, sightings []domain.Sighting) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SightingHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, s := range sightings {
		record := []string{
			s.ID, s.Team, s.ReferenceNode, s.SignalStrength, s.Location, s.Notes, s.Photo,
			strconv.FormatFloat(s.Latitude, 'f', -1, 64),
			strconv.FormatFloat(s.Longitude, 'f', -1, 64),
			s.BonusTags,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write sighting %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.TrimPrefix(record[0], "\ufeff")
	return strings.EqualFold(strings.TrimSpace(first), "id")
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseCoordinate(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, domain.ErrUnresolvedField
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedNumber, s)
	}
	return v, nil
}
