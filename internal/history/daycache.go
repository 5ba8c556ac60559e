package history

import (
	"context"
	"sync"
	"time"

	"ticker-alerts/internal/models"
)

// DayCache wraps a Provider with a per-symbol cache that expires at the next
// local midnight, so each series is fetched at most once per calendar day.
type DayCache struct {
	inner Provider

	mu     sync.RWMutex
	closes map[string]cachedSeries
	ratios map[string]cachedSeries

	// now is swappable for tests.
	now func() time.Time
}

type cachedSeries struct {
	series  models.Series
	expires time.Time
}

// NewDayCache creates a day-scoped caching provider around inner.
func NewDayCache(inner Provider) *DayCache {
	return &DayCache{
		inner:  inner,
		closes: make(map[string]cachedSeries),
		ratios: make(map[string]cachedSeries),
		now:    time.Now,
	}
}

// CloseSeries implements Provider.
func (d *DayCache) CloseSeries(ctx context.Context, symbol string) (models.Series, error) {
	return d.lookup(ctx, symbol, d.closes, d.inner.CloseSeries)
}

// RatioSeries implements Provider.
func (d *DayCache) RatioSeries(ctx context.Context, symbol string) (models.Series, error) {
	return d.lookup(ctx, symbol, d.ratios, d.inner.RatioSeries)
}

func (d *DayCache) lookup(
	ctx context.Context,
	symbol string,
	cache map[string]cachedSeries,
	fetch func(context.Context, string) (models.Series, error),
) (models.Series, error) {
	now := d.now()

	d.mu.RLock()
	entry, ok := cache[symbol]
	d.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.series, nil
	}

	series, err := fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	cache[symbol] = cachedSeries{series: series, expires: NextMidnight(now)}
	d.mu.Unlock()

	return series, nil
}

// NextMidnight returns the start of the next local calendar day after t.
func NextMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
