// Package history provides access to historical price and ratio series.
package history

import (
	"context"

	"ticker-alerts/internal/models"
)

// Provider fetches historical daily series for a symbol. Implementations must
// be safe for concurrent use: every symbol task reads through the same
// provider.
type Provider interface {
	// CloseSeries returns the daily closing price series, ordered by date.
	CloseSeries(ctx context.Context, symbol string) (models.Series, error)
	// RatioSeries returns the daily valuation ratio series, ordered by date.
	RatioSeries(ctx context.Context, symbol string) (models.Series, error)
}
