// Package metrics exposes Prometheus counters for the alert engine.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TicksTotal counts live ticks received per symbol.
	TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_ticks_total",
		Help: "Live price ticks received, per symbol.",
	}, []string{"symbol"})

	// TriggersTotal counts trigger events produced by the evaluators.
	TriggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_triggers_total",
		Help: "Trigger events produced, per symbol and condition key.",
	}, []string{"symbol", "condition"})

	// SuppressedTotal counts triggers suppressed by the dedup cache.
	SuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alert_suppressed_total",
		Help: "Triggers suppressed because the recipient was already notified today.",
	})

	// DeliveriesTotal counts notification deliveries by outcome.
	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_deliveries_total",
		Help: "Notification delivery attempts, by outcome.",
	}, []string{"status"})

	// EvaluationErrors counts evaluator failures per condition kind.
	EvaluationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_evaluation_errors_total",
		Help: "Evaluator failures, per condition kind.",
	}, []string{"kind"})

	// QueueDropped counts ticks discarded from full per-symbol queues.
	QueueDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_queue_dropped_total",
		Help: "Ticks dropped from full per-symbol queues.",
	}, []string{"symbol"})
)

// Serve runs the /metrics endpoint until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
