// Package notify delivers triggered alerts to the notification service.
package notify

import (
	"context"
	"time"

	"ticker-alerts/internal/models"
)

// Delivery is one notification handed to a channel: every trigger event an
// alert produced in a single evaluation cycle, grouped for one recipient.
type Delivery struct {
	// ID is a unique identifier for this delivery attempt.
	ID        string
	AlertID   string
	Symbol    string
	Recipient string
	Frequency string
	Events    []models.TriggerEvent
	At        time.Time
}

// Notifier sends a delivery to a channel. Implementations must be safe for
// concurrent use; the supervisor dispatches from many symbol tasks at once.
type Notifier interface {
	Send(ctx context.Context, d Delivery) error
}
