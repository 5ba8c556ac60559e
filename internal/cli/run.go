package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ticker-alerts/internal/config"
	"ticker-alerts/internal/dedup"
	"ticker-alerts/internal/dispatch"
	"ticker-alerts/internal/evaluate"
	"ticker-alerts/internal/feed"
	"ticker-alerts/internal/history"
	"ticker-alerts/internal/metrics"
	"ticker-alerts/internal/monitor"
	"ticker-alerts/internal/notify"
	"ticker-alerts/internal/store"
)

// newRunCmd creates the 'run' command: load active alerts, subscribe to the
// feed per symbol, and evaluate until interrupted.
func newRunCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start monitoring active alerts",
		Long: `Loads every ACTIVE alert from the store, groups them by symbol, and runs
one monitoring task per symbol against the live feed. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runMonitor(ctx, app, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log deliveries instead of posting them")
	return cmd
}

func runMonitor(ctx context.Context, app *App, dryRun bool) error {
	cfg := app.Config
	logger := app.Logger

	alertStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer alertStore.Close()

	alerts, err := alertStore.GetActiveAlerts(ctx)
	if err != nil {
		return err
	}
	grouped := store.GroupBySymbol(alerts)
	if len(grouped) == 0 {
		logger.Info().Msg("no active alerts, nothing to monitor")
		return nil
	}
	logger.Info().Int("alerts", len(alerts)).Int("symbols", len(grouped)).Msg("loaded alert definitions")

	histClient := history.NewClient(history.ClientConfig{
		ClosingPriceURL: cfg.History.ClosingPriceURL,
		RatioURL:        cfg.History.RatioURL,
		Timeout:         cfg.History.Timeout,
		MaxRetries:      cfg.History.MaxRetries,
	})
	env := evaluate.NewContext(history.NewDayCache(histClient))

	cache, err := newDedupCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer cache.Close()

	var notifier notify.Notifier
	if dryRun {
		notifier = notify.NewLogNotifier(logger)
	} else {
		notifier = notify.NewWebhookNotifier(notify.WebhookConfig{
			URL:       cfg.Notify.URL,
			AuthToken: cfg.Notify.AuthToken,
			Timeout:   cfg.Notify.Timeout,
		})
	}

	dispatcher := dispatch.NewDispatcher(env, cache, notifier, logger)

	liveFeed := feed.NewWebSocketFeed(feed.WebSocketFeedConfig{
		URL:            cfg.Feed.URL,
		HandshakeDelay: cfg.Feed.HandshakeDelay,
	})

	supervisor := monitor.NewSupervisor(liveFeed, dispatcher, logger, monitor.Config{
		QueueSize:     cfg.Monitor.QueueSize,
		ShutdownGrace: cfg.Monitor.ShutdownGrace,
	})

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.Warn().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}

	if err := supervisor.Start(ctx, grouped); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	return supervisor.Shutdown()
}

func newDedupCache(ctx context.Context, cfg *config.Config) (dedup.Cache, error) {
	if cfg.Cache.Backend == "redis" {
		return dedup.NewRedisCache(ctx, cfg.Cache.RedisURL)
	}
	return dedup.NewMemoryCache(), nil
}
