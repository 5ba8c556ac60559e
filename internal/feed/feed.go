// Package feed delivers live price ticks over WebSocket subscriptions.
package feed

import (
	"context"

	"ticker-alerts/internal/models"
)

// LiveFeed is a source of live price ticks. Each Subscribe call owns its own
// upstream subscription; the returned channel closes when the subscription
// ends, whether from ctx cancellation or a transport failure.
type LiveFeed interface {
	Subscribe(ctx context.Context, symbols []string) (<-chan models.PriceTick, error)

	// Close tears down every open subscription. Safe to call more than once.
	Close() error
}
