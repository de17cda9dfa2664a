// Command validate checks a case CSV offline using the same parsing and
// transformation the service runs. It reports row counts, skipped rows, and
// heat and marker counts under both marker policies, then verifies that the
// derived collections are consistent with each other.
//
// Usage:
//
//	go run ./cmd/validate -csv public/data/od_deaths_detailed_2020_2021.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/narcan-map/internal/adapter/source"
	"github.com/couchcryptid/narcan-map/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the case CSV file")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath string) int {
	fmt.Println("=== Case CSV Validation ===")
	fmt.Println()

	text, err := source.NewFileLoader("", csvPath).Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	rows := domain.ParseRows(text)
	all, allStats := domain.Transform(rows, domain.AllCases)
	fent, fentStats := domain.Transform(rows, domain.FentanylOnly)

	fmt.Printf("Rows read:    %d\n", allStats.RowsRead)
	fmt.Printf("Rows skipped: %d\n", allStats.RowsSkipped)
	fmt.Printf("Heat points:  %d\n", allStats.HeatPoints)
	fmt.Printf("Markers:      %d (policy %s), %d (policy %s)\n",
		allStats.Markers, domain.PolicyAll, fentStats.Markers, domain.PolicyFentanyl)
	fmt.Printf("Stations:     %d\n", domain.StationCount())
	fmt.Println()

	if allStats.Markers == 0 {
		fmt.Fprintln(os.Stderr, "FATAL: no rows with usable coordinates")
		return 1
	}

	phases := []*phase{
		validateCounts(allStats, fentStats),
		validateCollections(all, fent),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateCounts checks the stats of both policies against each other.
func validateCounts(all, fent domain.TransformStats) *phase {
	p := &phase{name: "Transform counts"}

	if all.RowsRead != fent.RowsRead || all.RowsSkipped != fent.RowsSkipped {
		p.errorf("policies disagree on rows: all=%d/%d fentanyl=%d/%d",
			all.RowsRead, all.RowsSkipped, fent.RowsRead, fent.RowsSkipped)
	}
	if all.Markers != all.RowsRead-all.RowsSkipped {
		p.errorf("all-cases markers %d != coordinate-valid rows %d", all.Markers, all.RowsRead-all.RowsSkipped)
	}
	if fent.Markers != fent.HeatPoints {
		p.errorf("fentanyl markers %d != heat points %d", fent.Markers, fent.HeatPoints)
	}
	if all.HeatPoints != fent.HeatPoints {
		p.errorf("heat points differ between policies: %d vs %d", all.HeatPoints, fent.HeatPoints)
	}
	return p
}

// validateCollections checks that heat points and fentanyl markers line up in order.
func validateCollections(all, fent domain.MapData) *phase {
	p := &phase{name: "Heat and marker alignment"}

	if len(fent.Markers) != len(all.Heat) {
		p.errorf("fentanyl markers %d != heat points %d", len(fent.Markers), len(all.Heat))
		return p
	}
	for i, m := range fent.Markers {
		if !m.Fentanyl {
			p.errorf("marker %d: fentanyl-only policy admitted a non-fentanyl case", i)
		}
		if m.Position != all.Heat[i] {
			p.errorf("marker %d: position %v != heat point %v", i, m.Position, all.Heat[i])
		}
	}

	fentanylInAll := 0
	for _, m := range all.Markers {
		if m.Fentanyl {
			fentanylInAll++
		}
	}
	if fentanylInAll != len(all.Heat) {
		p.errorf("fentanyl markers under all-cases policy %d != heat points %d", fentanylInAll, len(all.Heat))
	}
	return p
}
