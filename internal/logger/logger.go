package logger

import (
	"log/slog"
	"os"
)

// Logger is the application logger handed to services.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing text records to stdout at the given
// level (0 = info, -4 = debug, 8 = error).
func New(level int) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.Level(level),
	})
	return &Logger{Logger: slog.New(handler)}
}

// With returns a Logger with the given attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Fatal logs at error level and exits.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
