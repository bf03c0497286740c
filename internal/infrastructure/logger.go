// Package infrastructure wires the cross-cutting runtime pieces:
// the application-wide slog logger and the Prometheus metric set.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// InitializeLogger creates the application logger from configuration.
// Output is always JSON; the returned closer owns the log file when one
// was opened and is a no-op otherwise.
func InitializeLogger(level, output, filePath string) (*slog.Logger, func() error, error) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}

	var w io.Writer
	closer := func() error { return nil }

	switch strings.ToLower(output) {
	case "file":
		file, err := openLogFile(filePath)
		if err != nil {
			return nil, nil, err
		}
		w = file
		closer = file.Close
	case "both":
		file, err := openLogFile(filePath)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(os.Stdout, file)
		closer = file.Close
	default:
		w = os.Stdout
	}

	logger := slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(logger)
	return logger, closer, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
