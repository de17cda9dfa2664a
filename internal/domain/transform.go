package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// leadingFloatRe matches the numeric prefix a browser's parseFloat would consume,
// e.g. "37.77 N" -> "37.77", "-.5e3x" -> "-.5e3".
var leadingFloatRe = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseRows reads header-mapped CSV text into rows, in input order.
// Blank lines are skipped, as are records whose field count differs from the
// header or that fail to tokenize. Empty input or a header-only file yields no
// rows and no error.
func ParseRows(text string) []RawRow {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := readHeader(r)
	if err != nil {
		return []RawRow{}
	}
	idx := indexColumns(header)

	rows := make([]RawRow, 0, 64)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			break
		}
		if len(rec) != len(header) {
			continue
		}
		rows = append(rows, idx.row(rec))
	}
	return rows
}

// readHeader returns the first non-blank record, with any UTF-8 BOM removed.
func readHeader(r *csv.Reader) ([]string, error) {
	for {
		rec, err := r.Read()
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, fmt.Errorf("read csv header: %w", err)
		}
		if len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}
		return rec, nil
	}
}

// columnIndex maps each known column to its position in the header, or -1 when absent.
type columnIndex struct {
	lat, lon, fentanyl, cod, race, age, gender, date int
}

func indexColumns(header []string) columnIndex {
	pos := func(name string) int {
		// Later duplicates win, matching header-keyed object construction.
		found := -1
		for i, h := range header {
			if h == name {
				found = i
			}
		}
		return found
	}
	return columnIndex{
		lat:      pos(ColumnLat),
		lon:      pos(ColumnLon),
		fentanyl: pos(ColumnInvolvesFentanyl),
		cod:      pos(ColumnCODVariant),
		race:     pos(ColumnRace),
		age:      pos(ColumnAge),
		gender:   pos(ColumnGender),
		date:     pos(ColumnDate),
	}
}

func (c columnIndex) row(rec []string) RawRow {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	return RawRow{
		Lat:              field(c.lat),
		Lon:              field(c.lon),
		InvolvesFentanyl: field(c.fentanyl),
		CODVariant:       field(c.cod),
		Race:             field(c.race),
		Age:              field(c.age),
		Gender:           field(c.gender),
		Date:             field(c.date),
	}
}

// parseCoordinate parses the numeric prefix of s. It reports false when s has
// no numeric prefix or the value is not finite.
func parseCoordinate(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\n\v\f\r\u00a0\ufeff")
	m := leadingFloatRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ParseGeoPoint converts a row's LAT/LON fields into a GeoPoint.
func ParseGeoPoint(row RawRow) (GeoPoint, bool) {
	lat, ok := parseCoordinate(row.Lat)
	if !ok {
		return GeoPoint{}, false
	}
	lon, ok := parseCoordinate(row.Lon)
	if !ok {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: lat, Lon: lon}, true
}

// IsFentanyl reports whether the row's Involves_fentanyl field equals "TRUE", ignoring case.
func IsFentanyl(row RawRow) bool {
	return strings.EqualFold(row.InvolvesFentanyl, "TRUE")
}

// MarkerPolicy decides whether a coordinate-valid row becomes a CaseMarker.
type MarkerPolicy func(row RawRow, fentanyl bool) bool

// AllCases admits every coordinate-valid row.
func AllCases(RawRow, bool) bool { return true }

// FentanylOnly admits only fentanyl-positive rows.
func FentanylOnly(_ RawRow, fentanyl bool) bool { return fentanyl }

// Marker policy names accepted by ParseMarkerPolicy.
const (
	PolicyAll      = "all"
	PolicyFentanyl = "fentanyl"
)

// ParseMarkerPolicy resolves a configured policy name. The empty string selects AllCases.
func ParseMarkerPolicy(name string) (MarkerPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyAll:
		return AllCases, nil
	case PolicyFentanyl:
		return FentanylOnly, nil
	default:
		return nil, fmt.Errorf("unknown marker policy %q", name)
	}
}

// Transform derives heat points and case markers from rows in one pass.
// Rows whose coordinates do not parse contribute to neither collection.
// A nil policy behaves like AllCases.
func Transform(rows []RawRow, policy MarkerPolicy) (MapData, TransformStats) {
	if policy == nil {
		policy = AllCases
	}

	data := MapData{
		Heat:    make([]GeoPoint, 0, len(rows)),
		Markers: make([]CaseMarker, 0, len(rows)),
	}
	stats := TransformStats{RowsRead: len(rows)}

	for _, row := range rows {
		pt, ok := ParseGeoPoint(row)
		if !ok {
			stats.RowsSkipped++
			continue
		}

		fentanyl := IsFentanyl(row)
		if fentanyl {
			data.Heat = append(data.Heat, pt)
		}
		if policy(row, fentanyl) {
			data.Markers = append(data.Markers, CaseMarker{
				Position: pt,
				COD:      row.CODVariant,
				Race:     row.Race,
				Age:      row.Age,
				Gender:   row.Gender,
				Date:     row.Date,
				Fentanyl: fentanyl,
			})
		}
	}

	stats.HeatPoints = len(data.Heat)
	stats.Markers = len(data.Markers)
	return data, stats
}

// TransformText parses CSV text and transforms it in one call.
func TransformText(text string, policy MarkerPolicy) (MapData, TransformStats) {
	return Transform(ParseRows(text), policy)
}
