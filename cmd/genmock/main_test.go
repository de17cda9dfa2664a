package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/narcan-map/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFixture(t *testing.T) {
	at := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { domain.SetClock(nil) })

	f, err := buildFixture(filepath.Join("..", "..", "data", "mock", "od_deaths_sample.csv"), domain.FentanylOnly)
	require.NoError(t, err)

	assert.Equal(t, at, f.State.LoadedAt)
	assert.Equal(t, f.State.Stats.HeatPoints, f.State.Stats.Markers)
	assert.Len(t, f.Stations, domain.StationCount())
	assert.Equal(t, 13, f.View.Zoom)
}

func TestBuildFixture_MissingFile(t *testing.T) {
	_, err := buildFixture(filepath.Join(t.TempDir(), "missing.csv"), domain.AllCases)
	assert.Error(t, err)
}
