// Package dedup provides the day-scoped cache that suppresses repeat
// notifications for the same (symbol, recipient, condition key, date).
package dedup

import (
	"context"
	"fmt"
	"time"

	"ticker-alerts/internal/models"
)

// Cache is the deduplication store. Seen/Record are best-effort: two ticks
// racing between Seen and Record may both pass, which yields one duplicate
// notification at worst. That trade-off is deliberate; callers must not
// depend on an atomic check-and-set.
type Cache interface {
	// Seen reports whether a trigger was already recorded for the key on
	// the given calendar date.
	Seen(ctx context.Context, symbol, recipient, key string, date time.Time) (bool, error)
	// Record stores the triggered events under the key with expiry at the
	// next local midnight.
	Record(ctx context.Context, symbol, recipient, key string, date time.Time, events []models.TriggerEvent) error
	Close() error
}

// Key builds the cache key for one (symbol, recipient, condition key, date).
func Key(symbol, recipient, key string, date time.Time) string {
	return fmt.Sprintf("trigger:%s:%s:%s:%s", symbol, recipient, key, date.Format("2006-01-02"))
}

// TTL returns the remaining lifetime of a record created at now: the duration
// until the next local midnight.
func TTL(now time.Time) time.Duration {
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return midnight.Sub(now)
}
