package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ticker-alerts/internal/store"
	"ticker-alerts/internal/watcher"
)

// newWatchCmd creates the 'watch' command: run the monitor as a child
// process and restart it whenever the alert definitions change.
func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the monitor under the definition-change watcher",
		Long: `Launches 'ticker-alerts run' as a child process and polls the alert store
for definition changes. After a debounced burst of changes the child is
terminated, awaited, and relaunched, so the monitor always reflects the
current alert set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatcher(ctx, app)
		},
	}
}

func runWatcher(ctx context.Context, app *App) error {
	cfg := app.Config
	logger := app.Logger

	alertStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer alertStore.Close()

	self, err := os.Executable()
	if err != nil {
		return err
	}
	runner := watcher.NewProcessRunner(self, []string{"run"}, logger)
	if err := runner.Start(ctx); err != nil {
		return err
	}
	defer runner.Stop()

	w := watcher.New(alertStore, runner, logger, watcher.Config{
		Poll:     cfg.Store.PollInterval,
		Debounce: cfg.Watcher.Debounce,
	})

	err = w.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
