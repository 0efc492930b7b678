package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/cell-telemetry-etl/internal/domain"
)

// CellTransformer implements Transformer: it decodes a device snapshot,
// normalizes its primary cell, and optionally attaches the tower location.
type CellTransformer struct {
	locator domain.CellLocator
	logger  *slog.Logger
}

// NewTransformer creates a CellTransformer. Pass a nil locator to disable
// location enrichment.
func NewTransformer(locator domain.CellLocator, logger *slog.Logger) *CellTransformer {
	return &CellTransformer{
		locator: locator,
		logger:  logger,
	}
}

func (t *CellTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.CellReport, error) {
	snap, observations, err := domain.ParseRawMessage(raw)
	if err != nil {
		return domain.CellReport{}, err
	}

	primary, err := domain.SelectPrimary(observations)
	if err != nil {
		return domain.CellReport{}, err
	}
	cell, err := domain.NormalizeObservation(primary)
	if err != nil {
		return domain.CellReport{}, err
	}

	report := domain.NewCellReport(snap.DeviceID, primary.Technology(), cell, snap.ObservedAt)
	return domain.EnrichWithLocation(ctx, report, t.locator, t.logger), nil
}
