// Package monitor supervises the per-symbol monitoring tasks.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ticker-alerts/internal/dispatch"
	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/feed"
	"ticker-alerts/internal/logging"
	"ticker-alerts/internal/metrics"
	"ticker-alerts/internal/models"
)

const (
	defaultQueueSize     = 64
	defaultShutdownGrace = 10 * time.Second
)

// Supervisor runs one monitoring task per symbol. Each task owns its own
// feed subscription; a transport failure ends that task alone and the rest
// keep running.
type Supervisor struct {
	feed       feed.LiveFeed
	dispatcher *dispatch.Dispatcher
	logger     zerolog.Logger

	queueSize int
	grace     time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// Config holds supervisor tuning knobs.
type Config struct {
	// QueueSize bounds each symbol's tick queue. When full, the oldest
	// queued tick is dropped in favor of the newest.
	QueueSize int
	// ShutdownGrace bounds how long Shutdown waits for tasks to drain.
	ShutdownGrace time.Duration
}

// NewSupervisor creates a supervisor over the given feed and dispatcher.
func NewSupervisor(f feed.LiveFeed, d *dispatch.Dispatcher, logger zerolog.Logger, cfg Config) *Supervisor {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	grace := cfg.ShutdownGrace
	if grace <= 0 {
		grace = defaultShutdownGrace
	}
	return &Supervisor{
		feed:       f,
		dispatcher: d,
		logger:     logger,
		queueSize:  queueSize,
		grace:      grace,
	}
}

// Start launches one task per symbol in grouped. It returns immediately;
// tasks run until their subscription ends or Shutdown is called.
func (s *Supervisor) Start(ctx context.Context, grouped map[string][]*models.AlertDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.Wrap(errors.ErrConfigInvalid, "supervisor already started")
	}
	s.started = true

	taskCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for symbol, alerts := range grouped {
		s.wg.Add(1)
		go s.runTask(taskCtx, symbol, alerts)
	}
	return nil
}

// runTask owns one symbol end to end: subscription, queue, evaluation.
func (s *Supervisor) runTask(ctx context.Context, symbol string, alerts []*models.AlertDefinition) {
	defer s.wg.Done()
	logger := logging.WithSymbol(s.logger, symbol)

	ticks, err := s.feed.Subscribe(ctx, []string{symbol})
	if err != nil {
		subErr := errors.NewSubscriptionError(symbol, err)
		logger.Error().Err(subErr).Msg("subscription failed, task not started")
		return
	}
	logger.Info().Int("alerts", len(alerts)).Msg("monitoring started")

	// The queue decouples feed pace from evaluation pace. On overflow the
	// oldest tick is dropped: for threshold checks only the newest price
	// matters.
	queue := make(chan models.PriceTick, s.queueSize)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case tick, ok := <-queue:
				if !ok {
					return
				}
				s.dispatcher.HandleTick(ctx, tick, alerts)
			case <-ctx.Done():
				return
			}
		}
	}()

	for tick := range ticks {
		select {
		case queue <- tick:
		default:
			select {
			case <-queue:
				metrics.QueueDropped.WithLabelValues(symbol).Inc()
			default:
			}
			select {
			case queue <- tick:
			default:
			}
		}
	}

	close(queue)
	<-done
	logger.Info().Msg("monitoring stopped")
}

// Shutdown stops all tasks and waits up to the configured grace for them to
// finish. It returns ErrTimeout when the grace elapses first.
func (s *Supervisor) Shutdown() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	_ = s.feed.Close()

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-time.After(s.grace):
		return errors.ErrTimeout
	}
}
