package logging

import (
	"log/slog"

	"github.com/preston-bernstein/prop-grader/internal/failure"
)

// Info logs an info message when a logger is configured.
func Info(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning when a logger is configured.
func Warn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs err at error level. Typed failures also carry their kind so
// validation noise can be told apart from upstream outages.
func Error(logger *slog.Logger, msg string, err error, args ...any) {
	if logger == nil {
		return
	}
	if err != nil {
		args = append(args, "error", err)
		if kind := failure.KindOf(err); kind != "" {
			args = append(args, FieldKind, string(kind))
		}
	}
	logger.Error(msg, args...)
}
