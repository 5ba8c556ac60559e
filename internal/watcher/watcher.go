// Package watcher restarts the monitoring process when alert definitions
// change. Changes arrive in bursts (a user editing several alerts), so
// restarts are debounced: the process bounces once per quiet period, not once
// per edit.
package watcher

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultDebounce = time.Second
	defaultPoll     = 2 * time.Second
)

// ChangeSource reports a fingerprint of the watched state. Any change in the
// returned value counts as a change event.
type ChangeSource interface {
	Fingerprint(ctx context.Context) (string, error)
}

// Runner is the process under supervision.
type Runner interface {
	// Restart terminates the current process, awaits its exit, and
	// launches a replacement.
	Restart(ctx context.Context) error
}

// Watcher polls a change source and bounces the runner after a debounced
// burst of changes.
type Watcher struct {
	source   ChangeSource
	runner   Runner
	logger   zerolog.Logger
	poll     time.Duration
	debounce time.Duration
}

// Config holds watcher tuning knobs.
type Config struct {
	// Poll is the fingerprint polling interval.
	Poll time.Duration
	// Debounce is the quiet period required after the last observed
	// change before the runner is restarted.
	Debounce time.Duration
}

// New creates a watcher over source and runner.
func New(source ChangeSource, runner Runner, logger zerolog.Logger, cfg Config) *Watcher {
	poll := cfg.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		source:   source,
		runner:   runner,
		logger:   logger,
		poll:     poll,
		debounce: debounce,
	}
}

// Run polls until ctx is cancelled. Poll errors are logged and retried; a
// transient store outage must not kill the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	last, err := w.source.Fingerprint(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("initial fingerprint failed")
	}

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	var pending *time.Timer
	var pendingC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.Stop()
			}
			return ctx.Err()

		case <-ticker.C:
			current, err := w.source.Fingerprint(ctx)
			if err != nil {
				w.logger.Warn().Err(err).Msg("fingerprint poll failed")
				continue
			}
			if current == last {
				continue
			}
			last = current
			w.logger.Info().Msg("alert definitions changed, restart pending")

			// Reset the quiet-period timer on every change.
			if pending == nil {
				pending = time.NewTimer(w.debounce)
				pendingC = pending.C
			} else {
				if !pending.Stop() {
					select {
					case <-pending.C:
					default:
					}
				}
				pending.Reset(w.debounce)
			}

		case <-pendingC:
			pending = nil
			pendingC = nil
			w.logger.Info().Msg("restarting monitor process")
			if err := w.runner.Restart(ctx); err != nil {
				w.logger.Error().Err(err).Msg("restart failed")
			}
		}
	}
}
