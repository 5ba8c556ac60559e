// Package dispatch routes live ticks through the evaluators and forwards
// triggered alerts to the notification channel, deduplicating per recipient
// and calendar day.
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ticker-alerts/internal/dedup"
	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/evaluate"
	"ticker-alerts/internal/logging"
	"ticker-alerts/internal/metrics"
	"ticker-alerts/internal/models"
	"ticker-alerts/internal/notify"
)

// Dispatcher evaluates one symbol's alerts against each incoming tick.
// One evaluation cycle runs every alert for the tick's symbol; a failing
// alert is logged and skipped so the others still run.
type Dispatcher struct {
	env      *evaluate.Context
	cache    dedup.Cache
	notifier notify.Notifier
	logger   zerolog.Logger

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewDispatcher wires the evaluation context, dedup cache, and notification
// channel together.
func NewDispatcher(env *evaluate.Context, cache dedup.Cache, notifier notify.Notifier, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		env:      env,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
		Now:      time.Now,
	}
}

// HandleTick runs one evaluation cycle: every alert bound to the tick's
// symbol is evaluated against the live price, and new triggers are delivered.
func (d *Dispatcher) HandleTick(ctx context.Context, tick models.PriceTick, alerts []*models.AlertDefinition) {
	metrics.TicksTotal.WithLabelValues(tick.Symbol).Inc()
	logging.LogTick(d.logger, tick.Symbol, tick.Price)

	for _, alert := range alerts {
		if !alert.Active() {
			continue
		}

		// Evaluators see an immutable working copy with the live price
		// attached; the stored definition is never mutated.
		working := *alert
		working.CurrentPrice = tick.Price
		if working.DisplayName == "" {
			working.DisplayName = working.Symbol
		}

		events, err := evaluate.Evaluate(ctx, d.env, &working)
		if err != nil {
			metrics.EvaluationErrors.WithLabelValues(string(alert.Kind)).Inc()
			evalErr := errors.NewEvaluatorError(alert.ID, alert.Symbol, string(alert.Kind), err)
			alertLog := logging.WithAlert(d.logger, alert.ID)
			alertLog.Warn().Err(evalErr).Msg("evaluation failed")
			continue
		}
		if len(events) == 0 {
			continue
		}

		for _, ev := range events {
			metrics.TriggersTotal.WithLabelValues(alert.Symbol, ev.Key).Inc()
			logging.LogTrigger(d.logger, alert.ID, alert.Symbol, ev.Key, ev.Current)
		}

		d.deliver(ctx, &working, events)
	}
}

// deliver sends the cycle's triggers to each recipient, suppressing condition
// keys the recipient was already notified about today. The dedup record is
// written after the delivery attempt regardless of its outcome, so a flapping
// condition cannot spam a recipient through delivery failures.
func (d *Dispatcher) deliver(ctx context.Context, alert *models.AlertDefinition, events []models.TriggerEvent) {
	now := d.Now()

	for _, recipient := range alert.Recipients {
		fresh := make([]models.TriggerEvent, 0, len(events))
		for _, ev := range events {
			seen, err := d.cache.Seen(ctx, alert.Symbol, recipient, ev.Key, now)
			if err != nil {
				// A broken cache must not silence alerts; deliver and
				// let the Record attempt surface the failure.
				d.logger.Warn().Err(err).Msg("dedup lookup failed")
			}
			if seen {
				metrics.SuppressedTotal.Inc()
				logging.LogSuppressed(d.logger, alert.Symbol, recipient, ev.Key)
				continue
			}
			fresh = append(fresh, ev)
		}
		if len(fresh) == 0 {
			continue
		}

		delivery := notify.Delivery{
			ID:        uuid.NewString(),
			AlertID:   alert.ID,
			Symbol:    alert.Symbol,
			Recipient: recipient,
			Frequency: alert.Frequency,
			Events:    fresh,
			At:        now,
		}

		err := d.notifier.Send(ctx, delivery)
		logging.LogDelivery(d.logger, alert.ID, recipient, len(fresh), err)
		if err != nil {
			metrics.DeliveriesTotal.WithLabelValues("error").Inc()
		} else {
			metrics.DeliveriesTotal.WithLabelValues("ok").Inc()
		}

		for _, ev := range fresh {
			if recordErr := d.cache.Record(ctx, alert.Symbol, recipient, ev.Key, now, fresh); recordErr != nil {
				d.logger.Warn().Err(recordErr).Msg("dedup record failed")
			}
		}
	}
}
