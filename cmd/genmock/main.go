// Command genmock reads a case CSV and writes the map state the service would
// serve for it as a JSON fixture, for rendering-surface and API tests. It uses
// the service's domain package so the fixture matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/od_deaths_sample.csv \
//	  -out data/mock/od_deaths_sample_map.json \
//	  -policy all
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/couchcryptid/narcan-map/internal/domain"
	"github.com/jonboulle/clockwork"
)

// fixture is the JSON document written by genmock.
type fixture struct {
	State    *domain.MapState    `json:"state"`
	Stations []domain.EmsStation `json:"stations"`
	View     domain.ViewDefaults `json:"view"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "path to the case CSV file")
	out := flag.String("out", "", "output path for the map state JSON fixture")
	policyName := flag.String("policy", domain.PolicyAll, "marker policy: all or fentanyl")
	flag.Parse()

	if *csvPath == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -out")
	}

	policy, err := domain.ParseMarkerPolicy(*policyName)
	if err != nil {
		return err
	}

	// Set a fixed clock for reproducible LoadedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	f, err := buildFixture(*csvPath, policy)
	if err != nil {
		return err
	}
	log.Printf("rows read: %d, skipped: %d, heat: %d, markers: %d",
		f.State.Stats.RowsRead, f.State.Stats.RowsSkipped, f.State.Stats.HeatPoints, f.State.Stats.Markers)

	if err := writeJSON(*out, f); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)
	return nil
}

func buildFixture(csvPath string, policy domain.MarkerPolicy) (fixture, error) {
	b, err := os.ReadFile(csvPath)
	if err != nil {
		return fixture{}, fmt.Errorf("read csv: %w", err)
	}
	data, stats := domain.TransformText(string(b), policy)
	return fixture{
		State:    domain.NewMapState(data, stats, "file:"+csvPath, 1),
		Stations: domain.Stations(),
		View:     domain.DefaultView(),
	}, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644) //nolint:gosec // fixture files are not sensitive
}
