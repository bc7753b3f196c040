package config

import (
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
)

// NewLogger builds the process logger. The text format is colourised for terminals.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	if c.LogFormat == LogFormatText {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:     c.LogLevel,
			AddSource: c.LogLevel <= slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}
