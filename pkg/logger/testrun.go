package logger

import (
	"io"
	"log/slog"
)

func NewTestHandler(level slog.Level) slog.Handler {
	return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})
}

// NewTerminalHandler is used by the CLI, where JSON on stdout would fight
// with the rendered widget.
func NewTerminalHandler(w io.Writer) func(level slog.Level) slog.Handler {
	return func(level slog.Level) slog.Handler {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
}
