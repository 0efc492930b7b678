package domain

import (
	"context"
	"log/slog"
)

// CellLocation is the approximate position of a cell tower.
type CellLocation struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	AccuracyM int     `json:"accuracy_m,omitempty"`
	Samples   int     `json:"samples,omitempty"`
}

// Empty reports whether the location carries no coordinates.
func (l CellLocation) Empty() bool {
	return l.Lat == 0 && l.Lon == 0
}

// CellLocator resolves a cell identity to a position.
type CellLocator interface {
	Locate(ctx context.Context, tech Technology, cell CanonicalCellRecord) (CellLocation, error)
}

// EnrichWithLocation attaches the cell position to a report. A nil locator
// leaves the report untouched; lookup failures are recorded on the report
// instead of failing it.
func EnrichWithLocation(ctx context.Context, report CellReport, locator CellLocator, logger *slog.Logger) CellReport {
	if locator == nil {
		return report
	}

	loc, err := locator.Locate(ctx, report.Technology, report.Cell)
	if err != nil {
		logger.Warn("cell location lookup failed",
			"report_id", report.ID,
			"mcc", report.Cell.MobileCountryCode,
			"mnc", report.Cell.MobileNetworkCode,
			"lac", report.Cell.LocationAreaCode,
			"cell_id", report.Cell.ID,
			"error", err,
		)
		report.LocationSource = LocationSourceFailed
		return report
	}
	if loc.Empty() {
		report.LocationSource = LocationSourceNone
		return report
	}

	report.Location = &loc
	report.LocationSource = LocationSourceOpenCellID
	return report
}
