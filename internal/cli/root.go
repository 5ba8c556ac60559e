// Package cli provides the command-line interface for the alert engine.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ticker-alerts/internal/config"
	"ticker-alerts/internal/logging"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies shared across commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "ticker-alerts",
		Short: "Live market alert engine",
		Long: `ticker-alerts monitors live prices and evaluates user-defined alert
conditions: price moves, moving averages, oscillators, valuation ratios,
drawdowns, and missed opportunities. Triggered alerts are delivered once per
recipient per day.

Use 'ticker-alerts run' to start monitoring, or 'ticker-alerts watch' to run
under the definition-change watcher.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "config directory (default ~/.config/ticker-alerts)")

	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
	rootCmd.AddCommand(newAlertsCmd(app))

	return rootCmd
}

// Execute loads the environment and configuration, builds the root command,
// and runs it.
func Execute() {
	// Local .env is optional; missing is not an error.
	_ = godotenv.Load()

	configDir, _ := configDirFromArgs(os.Args[1:])
	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	if cfg.Logging.FilePath != "" {
		logCfg.FilePath = cfg.Logging.FilePath
	}
	logger := logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		FilePath:   logCfg.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})

	if err := NewRootCmd(cfg, logger).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configDirFromArgs pre-parses the --config flag so the config is available
// before cobra runs.
func configDirFromArgs(args []string) (string, bool) {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1], true
		}
		if len(arg) > len("--config=") && arg[:len("--config=")] == "--config=" {
			return arg[len("--config="):], true
		}
	}
	return "", false
}
