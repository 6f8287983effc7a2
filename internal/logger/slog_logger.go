package logger

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// NewSlogLogger creates a standalone JSON logger writing to writer.
// It is used by tests and by commands that run before configuration is loaded.
func NewSlogLogger(writer io.Writer, level LogLevel, timezone *time.Location) Logger {
	if writer == nil {
		writer = os.Stderr
	}
	if timezone == nil {
		timezone = time.UTC
	}

	slogLevel := parseSlogLevel(level)
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slogLevel})

	return &moduleLogger{
		logger:   slog.New(handler),
		level:    slogLevel,
		timezone: timezone,
	}
}

// NewConsoleLogger creates a text logger on stderr for bootstrap output.
func NewConsoleLogger(module string, level LogLevel) Logger {
	slogLevel := parseSlogLevel(level)
	return &moduleLogger{
		module:   module,
		logger:   slog.New(newTextHandler(os.Stderr, slogLevel, time.Local)),
		level:    slogLevel,
		timezone: time.Local,
	}
}
