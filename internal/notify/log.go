package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes deliveries to the structured log instead of a remote
// service. Used by the dry-run command.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-backed channel.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs each trigger event in the delivery.
func (l *LogNotifier) Send(ctx context.Context, d Delivery) error {
	for _, ev := range d.Events {
		l.logger.Info().
			Str("delivery_id", d.ID).
			Str("alert_id", d.AlertID).
			Str("symbol", d.Symbol).
			Str("recipient", d.Recipient).
			Str("condition", ev.Key).
			Str("title", ev.Title).
			Msg(ev.Message)
	}
	return nil
}
