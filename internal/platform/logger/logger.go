// Package logger provides structured logging for the application.
//
// It uses Go's log/slog package to emit JSON logs with a configurable level,
// and carries request-scoped loggers through context.Context.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatihgnc/taskman-api/internal/config"
)

// Setup initializes the application's logging based on the provided
// configuration: a JSON handler on stdout at the configured level. The
// returned logger is also installed as the slog default.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	log := slog.New(handler)
	slog.SetDefault(log)

	return log, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", s)
	}
}
