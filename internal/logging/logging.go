// Package logging provides structured logging for the alert engine.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "ticker-alerts", "logs", "alerts.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		writers = append(writers, consoleWriter)
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	if len(writers) == 0 {
		writer = os.Stdout
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ContextKey is the type for context keys.
type ContextKey string

// LoggerKey is the context key for the logger.
const LoggerKey ContextKey = "logger"

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithSymbol adds a symbol to the logger context.
func WithSymbol(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("symbol", symbol).Logger()
}

// WithAlert adds an alert ID to the logger context.
func WithAlert(logger zerolog.Logger, alertID string) zerolog.Logger {
	return logger.With().Str("alert_id", alertID).Logger()
}

// LogTick logs an incoming live tick at debug level.
func LogTick(logger zerolog.Logger, symbol string, price float64) {
	logger.Debug().
		Str("event", "tick").
		Str("symbol", symbol).
		Float64("price", price).
		Msg("Tick received")
}

// LogTrigger logs a condition trigger.
func LogTrigger(logger zerolog.Logger, alertID, symbol, key string, current float64) {
	logger.Info().
		Str("event", "trigger").
		Str("alert_id", alertID).
		Str("symbol", symbol).
		Str("key", key).
		Float64("price", current).
		Msg("Condition triggered")
}

// LogSuppressed logs a trigger suppressed by the dedup cache.
func LogSuppressed(logger zerolog.Logger, symbol, recipient, key string) {
	logger.Debug().
		Str("event", "suppressed").
		Str("symbol", symbol).
		Str("recipient", recipient).
		Str("key", key).
		Msg("Already triggered today")
}

// LogDelivery logs a notification delivery attempt.
func LogDelivery(logger zerolog.Logger, alertID, recipient string, count int, err error) {
	event := logger.Info().
		Str("event", "delivery").
		Str("alert_id", alertID).
		Str("recipient", recipient).
		Int("triggers", count)

	if err != nil {
		event.Err(err).Msg("Notification delivery failed")
	} else {
		event.Msg("Notification delivered")
	}
}
