// Package cellinfo serves the getCellInfo method: a permission-gated call
// that reads the visible cells from a provider and returns the canonical
// identity of the primary one.
package cellinfo

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/cell-telemetry-etl/internal/domain"
	"github.com/couchcryptid/cell-telemetry-etl/internal/observability"
)

// MethodGetCellInfo is the method name callers use to request the primary cell.
const MethodGetCellInfo = "getCellInfo"

// CodeNotImplemented is reported for methods the bridge does not serve.
const CodeNotImplemented = "NOT_IMPLEMENTED"

// ErrNotImplemented is returned by Invoke for unknown methods.
var ErrNotImplemented = errors.New("method not implemented")

// PermissionChecker reports whether the caller holds a location-access grant.
type PermissionChecker interface {
	HasLocationAccess(ctx context.Context) bool
}

// Provider returns every cell currently visible to the device.
type Provider interface {
	AllCellInfo(ctx context.Context) (domain.ObservationSet, error)
}

// Grant is a fixed PermissionChecker.
type Grant bool

func (g Grant) HasLocationAccess(context.Context) bool { return bool(g) }

// Snapshot is a Provider over an already collected observation set.
type Snapshot domain.ObservationSet

func (s Snapshot) AllCellInfo(context.Context) (domain.ObservationSet, error) {
	return domain.ObservationSet(s), nil
}

// Bridge dispatches method calls to the normalizer.
type Bridge struct {
	metrics *observability.Metrics
}

// NewBridge creates a Bridge that records call outcomes in metrics.
func NewBridge(metrics *observability.Metrics) *Bridge {
	return &Bridge{metrics: metrics}
}

// Invoke calls method and returns its result as a flat key/value mapping.
func (b *Bridge) Invoke(ctx context.Context, method string, perm PermissionChecker, provider Provider) (map[string]any, error) {
	switch method {
	case MethodGetCellInfo:
		rec, err := b.GetCellInfo(ctx, perm, provider)
		if err != nil {
			return nil, err
		}
		return rec.Map(), nil
	default:
		b.metrics.CellInfoRequests.WithLabelValues(CodeNotImplemented).Inc()
		return nil, fmt.Errorf("%w: %q", ErrNotImplemented, method)
	}
}

// GetCellInfo checks the location grant, then reads and normalizes the
// visible cells. The provider is not consulted when the grant is missing.
func (b *Bridge) GetCellInfo(ctx context.Context, perm PermissionChecker, provider Provider) (domain.CanonicalCellRecord, error) {
	rec, err := getCellInfo(ctx, perm, provider)
	outcome := "OK"
	if err != nil {
		outcome = ErrorFor(err).Code
	}
	b.metrics.CellInfoRequests.WithLabelValues(outcome).Inc()
	return rec, err
}

func getCellInfo(ctx context.Context, perm PermissionChecker, provider Provider) (domain.CanonicalCellRecord, error) {
	if perm == nil || !perm.HasLocationAccess(ctx) {
		return domain.CanonicalCellRecord{}, domain.ErrPermissionDenied
	}
	if provider == nil {
		return domain.CanonicalCellRecord{}, domain.ErrNoDataAvailable
	}

	observations, err := provider.AllCellInfo(ctx)
	if err != nil {
		return domain.CanonicalCellRecord{}, fmt.Errorf("read cell info: %w", err)
	}
	return domain.Normalize(observations)
}
