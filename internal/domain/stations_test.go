package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStations_FixedOrderedList(t *testing.T) {
	stations := Stations()

	require.Len(t, stations, 45)
	assert.Equal(t, StationCount(), len(stations))
	assert.Equal(t, EmsStation{Name: "Station 1", Lat: 37.778474, Lon: -122.404469, Address: "935 Folsom at 5th Street"}, stations[0])
	assert.Equal(t, "Station 51", stations[len(stations)-1].Name)

	for _, s := range stations {
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.Address)
		assert.InDelta(t, 37.76, s.Lat, 0.1, s.Name)
		assert.InDelta(t, -122.44, s.Lon, 0.1, s.Name)
	}
}

func TestStations_ReturnsCopy(t *testing.T) {
	first := Stations()
	first[0].Name = "changed"

	assert.Equal(t, "Station 1", Stations()[0].Name)
}

func TestEmsStation_Position(t *testing.T) {
	s := EmsStation{Lat: 37.1, Lon: -122.2}
	assert.Equal(t, GeoPoint{Lat: 37.1, Lon: -122.2}, s.Position())
}

func TestLoadError(t *testing.T) {
	cause := errors.New("connection refused")
	err := LoadError("http://example.test/od.csv", cause)

	assert.ErrorIs(t, err, ErrLoadFailure)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "http://example.test/od.csv")
	assert.NotErrorIs(t, fmt.Errorf("other"), ErrLoadFailure)
}

func TestDefaultView(t *testing.T) {
	v := DefaultView()

	assert.Equal(t, GeoPoint{Lat: 37.7749, Lon: -122.4194}, v.Center)
	assert.Equal(t, 13, v.Zoom)
	assert.Equal(t, HeatOptions{Radius: 15, Blur: 15, MaxZoom: 17}, v.Heat)
	require.Len(t, v.Overlays, 3)
	assert.True(t, v.Overlays[0].Visible)
	assert.False(t, v.Overlays[1].Visible)
	assert.False(t, v.Overlays[2].Visible)
}
