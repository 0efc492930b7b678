// Command genmock generates cell snapshot fixtures for the pipeline and
// integration tests. Expected outcomes are derived from the generated cells,
// and the optional reports fixture is produced by running the real
// transformer so downstream consumers see exactly what the pipeline
// publishes.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -seed 42 -n 200 \
//	  -out data/mock/cell_observations_generated.json \
//	  -reports-out data/mock/cell_reports_generated.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/cell-telemetry-etl/internal/domain"
	"github.com/couchcryptid/cell-telemetry-etl/internal/mockdata"
	"github.com/couchcryptid/cell-telemetry-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	seed := flag.Uint64("seed", 42, "random seed")
	n := flag.Int("n", 200, "number of cases to generate")
	out := flag.String("out", "", "output path for the snapshot fixture")
	reportsOut := flag.String("reports-out", "", "optional output path for the published reports fixture")
	flag.Parse()

	if *out == "" || *n <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -n > 0")
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	cases := mockdata.Generate(*seed, *n)
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := mockdata.Write(*out, cases); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d cases: %s", len(cases), *out)

	if *reportsOut != "" {
		reports, err := transformAll(cases)
		if err != nil {
			return err
		}
		if err := writeJSON(*reportsOut, reports); err != nil {
			return fmt.Errorf("writing reports fixture: %w", err)
		}
		log.Printf("wrote %d reports: %s", len(reports), *reportsOut)
	}

	printStats(cases)
	return nil
}

// transformAll runs every successful case through the pipeline transformer.
func transformAll(cases []mockdata.Case) ([]domain.CellReport, error) {
	transformer := pipeline.NewTransformer(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	reports := make([]domain.CellReport, 0, len(cases))

	for _, c := range cases {
		if c.Expected == nil {
			continue
		}
		raw, err := c.RawMessage("raw-cell-observations")
		if err != nil {
			return nil, err
		}
		report, err := transformer.Transform(context.Background(), raw)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", c.Name, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// statsResult holds aggregated counts for printStats reporting.
type statsResult struct {
	techCounts   map[domain.Technology]int
	errorCounts  map[string]int
	cellCounts   map[int]int
	legacyCodes  int
	registered   int
	unregistered int
}

func collectStats(cases []mockdata.Case) statsResult {
	s := statsResult{
		techCounts:  map[domain.Technology]int{},
		errorCounts: map[string]int{},
		cellCounts:  map[int]int{},
	}
	for i := range cases {
		c := &cases[i]
		s.cellCounts[len(c.Message.Cells)]++

		if c.ExpectedError != "" {
			s.errorCounts[c.ExpectedError]++
			continue
		}
		s.techCounts[c.Expected.Technology]++

		hasRegistered := false
		for _, cell := range c.Message.Cells {
			if cell.Registered {
				hasRegistered = true
			}
			if cell.MCC != nil {
				s.legacyCodes++
			}
		}
		if hasRegistered {
			s.registered++
		} else {
			s.unregistered++
		}
	}
	return s
}

func printStats(cases []mockdata.Case) {
	stats := collectStats(cases)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(cases))
	fmt.Printf("By technology: lte=%d, gsm=%d, wcdma=%d\n",
		stats.techCounts[domain.TechnologyLTE], stats.techCounts[domain.TechnologyGSM], stats.techCounts[domain.TechnologyWCDMA])
	fmt.Printf("By expected error: %s=%d, %s=%d\n",
		domain.CodeNoDataAvailable, stats.errorCounts[domain.CodeNoDataAvailable],
		domain.CodeUnsupportedTechnology, stats.errorCounts[domain.CodeUnsupportedTechnology])
	fmt.Printf("Primary by registration: registered=%d, first-visible=%d\n", stats.registered, stats.unregistered)
	fmt.Printf("Cells with legacy integer codes: %d\n", stats.legacyCodes)

	sizes := make([]int, 0, len(stats.cellCounts))
	for size := range stats.cellCounts {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	fmt.Print("Cells per snapshot:")
	for _, size := range sizes {
		fmt.Printf(" %d=%d", size, stats.cellCounts[size])
	}
	fmt.Println()
}
