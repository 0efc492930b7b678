package opencellid

import (
	"context"
	"fmt"

	"github.com/couchcryptid/cell-telemetry-etl/internal/domain"
	"github.com/couchcryptid/cell-telemetry-etl/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedLocator wraps a CellLocator with an in-memory LRU cache keyed by the
// full cell identity.
type CachedLocator struct {
	inner   domain.CellLocator
	cache   *lru.Cache[string, domain.CellLocation]
	metrics *observability.Metrics
}

// NewCachedLocator creates a cache decorator around a locator.
func NewCachedLocator(inner domain.CellLocator, maxEntries int, metrics *observability.Metrics) (*CachedLocator, error) {
	cache, err := lru.New[string, domain.CellLocation](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create location cache: %w", err)
	}
	return &CachedLocator{inner: inner, cache: cache, metrics: metrics}, nil
}

func (c *CachedLocator) Locate(ctx context.Context, tech domain.Technology, cell domain.CanonicalCellRecord) (domain.CellLocation, error) {
	key := cacheKey(tech, cell)
	if loc, ok := c.cache.Get(key); ok {
		c.metrics.LocateCache.WithLabelValues("hit").Inc()
		return loc, nil
	}
	c.metrics.LocateCache.WithLabelValues("miss").Inc()

	loc, err := c.inner.Locate(ctx, tech, cell)
	if err != nil {
		return loc, err
	}
	// Only cache found cells so "not found" answers are retried once the
	// database learns about the cell.
	if !loc.Empty() {
		c.cache.Add(key, loc)
	}
	return loc, nil
}

// Len returns the number of cached cells.
func (c *CachedLocator) Len() int {
	return c.cache.Len()
}

func cacheKey(tech domain.Technology, cell domain.CanonicalCellRecord) string {
	return fmt.Sprintf("%s:%s-%s-%d-%d", tech, cell.MobileCountryCode, cell.MobileNetworkCode, cell.LocationAreaCode, cell.ID)
}
