package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrLoadFailure marks any failure to retrieve the CSV resource.
// Loaders wrap their underlying error with it so callers can test with errors.Is.
var ErrLoadFailure = errors.New("load failure")

// Loader retrieves the full text of the case CSV.
type Loader interface {
	Load(ctx context.Context) (string, error)
}

// LoadError wraps a loader-specific error with ErrLoadFailure and the resource it was reading.
func LoadError(resource string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLoadFailure, resource, err)
}

// Column names read from the CSV header.
const (
	ColumnLat              = "LAT"
	ColumnLon              = "LON"
	ColumnInvolvesFentanyl = "Involves_fentanyl"
	ColumnCODVariant       = "COD Variant"
	ColumnRace             = "Race"
	ColumnAge              = "Age"
	ColumnGender           = "Gender"
	ColumnDate             = "Date"
)

// RawRow is one CSV record. Every field is passed through as text;
// only Lat and Lon are ever validated.
type RawRow struct {
	Lat              string
	Lon              string
	InvolvesFentanyl string
	CODVariant       string
	Race             string
	Age              string
	Gender           string
	Date             string
}

// GeoPoint is a WGS-84 latitude/longitude pair. Both components are finite.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// MarshalJSON renders the point as [lat, lon], the shape heat layers consume.
func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lon})
}

// UnmarshalJSON reads the [lat, lon] form written by MarshalJSON.
func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode geo point: %w", err)
	}
	p.Lat, p.Lon = pair[0], pair[1]
	return nil
}

// CaseMarker is a case location annotated with the descriptive fields shown in its popup.
type CaseMarker struct {
	Position GeoPoint `json:"position"`
	COD      string   `json:"cod"`
	Race     string   `json:"race"`
	Age      string   `json:"age"`
	Gender   string   `json:"gender"`
	Date     string   `json:"date"`

	// Fentanyl is not shown in the popup but lets consumers of the
	// all-cases collection split it without re-reading the CSV.
	Fentanyl bool `json:"fentanyl"`
}

// PopupLines returns the labelled lines displayed when a marker is opened.
func (m CaseMarker) PopupLines() []string {
	return []string{
		"Cause of Death: " + m.COD,
		"Race: " + m.Race,
		"Age: " + m.Age,
		"Gender: " + m.Gender,
		"Date: " + m.Date,
	}
}

// MapData holds the two collections derived from one load.
type MapData struct {
	Heat    []GeoPoint   `json:"heat"`
	Markers []CaseMarker `json:"markers"`
}

// TransformStats summarizes a single transformation pass.
type TransformStats struct {
	RowsRead    int `json:"rows_read"`
	RowsSkipped int `json:"rows_skipped"`
	HeatPoints  int `json:"heat_points"`
	Markers     int `json:"markers"`
}

// MapState is the complete, immutable result of a load. It is replaced
// wholesale and never mutated after construction.
type MapState struct {
	Data       MapData
	Stats      TransformStats
	Source     string
	Generation uint64
	LoadedAt   time.Time
}

// NewMapState stamps a transformation result with its origin and the current clock time.
func NewMapState(data MapData, stats TransformStats, source string, generation uint64) *MapState {
	return &MapState{
		Data:       data,
		Stats:      stats,
		Source:     source,
		Generation: generation,
		LoadedAt:   clock.Now().UTC(),
	}
}

// EmptyMapState is the state served before any load has completed.
func EmptyMapState() *MapState {
	return &MapState{
		Data: MapData{Heat: []GeoPoint{}, Markers: []CaseMarker{}},
	}
}
