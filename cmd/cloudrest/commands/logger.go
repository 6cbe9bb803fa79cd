package commands

import (
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/fivetwenty-io/cloudrest/pkg/gax"
)

// slogLogger adapts log/slog to gax.Logger.
type slogLogger struct {
	logger *slog.Logger
}

// NewLogger returns a text logger writing to w. Only warnings and errors
// are shown unless verbose is set.
func NewLogger(w io.Writer, verbose bool) gax.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return &slogLogger{logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

func (l *slogLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, attrs(fields)...)
}

func (l *slogLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, attrs(fields)...)
}

func (l *slogLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, attrs(fields)...)
}

func (l *slogLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, attrs(fields)...)
}

func attrs(fields map[string]interface{}) []any {
	out := make([]any, 0, len(fields))

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		out = append(out, slog.Any(key, fields[key]))
	}

	return out
}
