// Command validate checks a cell snapshot fixture end to end: fixture
// integrity, primary cell selection, normalization through the pipeline
// transformer, and (optionally) consistency with a published reports
// fixture written by genmock.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -fixture data/mock/cell_observations.json \
//	  -reports data/mock/cell_reports_generated.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/cell-telemetry-etl/internal/domain"
	"github.com/couchcryptid/cell-telemetry-etl/internal/mockdata"
	"github.com/couchcryptid/cell-telemetry-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
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
	fixture := flag.String("fixture", "", "path to the snapshot fixture")
	reports := flag.String("reports", "", "optional path to the published reports fixture")
	flag.Parse()

	if *fixture == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixture, *reports); code != 0 {
		os.Exit(code)
	}
}

func run(fixturePath, reportsPath string) int {
	// Set a fixed clock matching genmock for ID reproducibility.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Cell Fixture Validation ===")
	fmt.Println()

	cases, err := mockdata.Load(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	transformer := pipeline.NewTransformer(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	phases := []*phase{
		validateFixtureIntegrity(cases),
		validatePrimarySelection(cases),
		validateNormalization(cases, transformer),
	}

	var published []domain.CellReport
	if reportsPath != "" {
		published, err = loadReports(reportsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load reports: %v\n", err)
			return 1
		}
		phases = append(phases, validatePublishedReports(cases, published, transformer))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d fixture cases, %d published reports\n", len(cases), len(published))

	// Print detailed errors.
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

func loadReports(path string) ([]domain.CellReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reports []domain.CellReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// ── Phase 1: fixture integrity ──

var knownCodes = map[string]bool{
	domain.CodeNoDataAvailable:       true,
	domain.CodeUnsupportedTechnology: true,
	domain.CodeInvalidArgument:       true,
}

func validateFixtureIntegrity(cases []mockdata.Case) *phase {
	p := &phase{name: "Phase 1: Fixture integrity"}
	seen := make(map[string]bool, len(cases))

	for i, c := range cases {
		label := fmt.Sprintf("case %d (%s)", i, c.Name)
		switch {
		case c.Name == "":
			p.errorf("case %d: missing name", i)
		case seen[c.Name]:
			p.errorf("%s: duplicate name", label)
		}
		seen[c.Name] = true

		if c.Message.DeviceID == "" {
			p.errorf("%s: missing device_id", label)
		}
		if c.Message.ObservedAt.IsZero() {
			p.errorf("%s: missing observed_at", label)
		}
		if (c.Expected == nil) == (c.ExpectedError == "") {
			p.errorf("%s: must have exactly one of expected or expected_error", label)
		}
		if c.ExpectedError != "" && !knownCodes[c.ExpectedError] {
			p.errorf("%s: unknown expected_error %q", label, c.ExpectedError)
		}
		if c.Expected != nil {
			switch c.Expected.Technology {
			case domain.TechnologyLTE, domain.TechnologyGSM, domain.TechnologyWCDMA:
			default:
				p.errorf("%s: expected technology %q has no normalization rule", label, c.Expected.Technology)
			}
		}
	}
	return p
}

// ── Phase 2: primary selection ──

// validatePrimarySelection checks expectations against the wire cells
// directly: the primary is the first registered cell, else the first cell.
func validatePrimarySelection(cases []mockdata.Case) *phase {
	p := &phase{name: "Phase 2: Primary cell selection"}

	for _, c := range cases {
		if c.Expected == nil {
			continue
		}
		if len(c.Message.Cells) == 0 {
			p.errorf("%s: expected a record but snapshot has no cells", c.Name)
			continue
		}

		primary := c.Message.Cells[0]
		for _, cell := range c.Message.Cells {
			if cell.Registered {
				primary = cell
				break
			}
		}

		if got := domain.Technology(strings.ToLower(primary.Type)); got != c.Expected.Technology {
			p.errorf("%s: primary cell is %s, expected %s", c.Name, got, c.Expected.Technology)
			continue
		}
		if id, area, ok := wireIdentity(primary); ok {
			if id != c.Expected.Cell.ID || area != c.Expected.Cell.LocationAreaCode {
				p.errorf("%s: primary identity %d/%d, expected %d/%d",
					c.Name, id, area, c.Expected.Cell.ID, c.Expected.Cell.LocationAreaCode)
			}
		} else {
			p.errorf("%s: primary cell is missing its identity fields", c.Name)
		}
		if mcc := wireCode(primary.MCCString, primary.MCC); mcc != c.Expected.Cell.MobileCountryCode {
			p.errorf("%s: primary mcc %q, expected %q", c.Name, mcc, c.Expected.Cell.MobileCountryCode)
		}
		if mnc := wireCode(primary.MNCString, primary.MNC); mnc != c.Expected.Cell.MobileNetworkCode {
			p.errorf("%s: primary mnc %q, expected %q", c.Name, mnc, c.Expected.Cell.MobileNetworkCode)
		}
	}
	return p
}

func wireIdentity(cell domain.WireCell) (uint64, uint32, bool) {
	if cell.CI != nil && cell.TAC != nil {
		return *cell.CI, *cell.TAC, true
	}
	if cell.CID != nil && cell.LAC != nil {
		return *cell.CID, *cell.LAC, true
	}
	return 0, 0, false
}

func wireCode(s *string, legacy *int) string {
	if s != nil {
		return *s
	}
	if legacy != nil {
		return strconv.Itoa(*legacy)
	}
	return ""
}

// ── Phase 3: normalization ──

func validateNormalization(cases []mockdata.Case, transformer *pipeline.CellTransformer) *phase {
	p := &phase{name: "Phase 3: Normalization"}

	for _, c := range cases {
		raw, err := c.RawMessage("raw-cell-observations")
		if err != nil {
			p.errorf("%s: %v", c.Name, err)
			continue
		}

		report, err := transformer.Transform(context.Background(), raw)
		if c.ExpectedError != "" {
			if err == nil {
				p.errorf("%s: expected %s, got record %+v", c.Name, c.ExpectedError, report.Cell)
			} else if code := domain.ErrorCode(err); code != c.ExpectedError {
				p.errorf("%s: expected %s, got %s (%v)", c.Name, c.ExpectedError, code, err)
			}
			continue
		}
		if err != nil {
			p.errorf("%s: unexpected error %s (%v)", c.Name, domain.ErrorCode(err), err)
			continue
		}
		if report.Technology != c.Expected.Technology {
			p.errorf("%s: technology %s, expected %s", c.Name, report.Technology, c.Expected.Technology)
		}
		if diff := cmp.Diff(c.Expected.Cell, report.Cell); diff != "" {
			p.errorf("%s: record mismatch (-want +got):\n%s", c.Name, diff)
		}
		if report.DeviceID != c.Message.DeviceID {
			p.errorf("%s: device_id %q, expected %q", c.Name, report.DeviceID, c.Message.DeviceID)
		}
	}
	return p
}

// ── Phase 4: published reports ──

func validatePublishedReports(cases []mockdata.Case, published []domain.CellReport, transformer *pipeline.CellTransformer) *phase {
	p := &phase{name: "Phase 4: Published report consistency"}

	byID := make(map[string]domain.CellReport, len(published))
	for _, r := range published {
		if _, dup := byID[r.ID]; dup {
			p.errorf("report %s: duplicate id", r.ID)
		}
		byID[r.ID] = r
	}

	var expected int
	for _, c := range cases {
		if c.Expected == nil {
			continue
		}
		expected++

		raw, err := c.RawMessage("raw-cell-observations")
		if err != nil {
			p.errorf("%s: %v", c.Name, err)
			continue
		}
		report, err := transformer.Transform(context.Background(), raw)
		if err != nil {
			continue // reported in phase 3
		}

		got, ok := byID[report.ID]
		if !ok {
			p.errorf("%s: no published report with id %s", c.Name, report.ID)
			continue
		}
		if diff := cmp.Diff(report, got); diff != "" {
			p.errorf("%s: published report differs (-want +got):\n%s", c.Name, diff)
		}
	}

	if expected != len(published) {
		p.errorf("published %d reports, fixture has %d successful cases", len(published), expected)
	}
	return p
}
