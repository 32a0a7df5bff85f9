// Package logger builds the service's slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON logger on stdout. Debug level is enabled in the dev environment.
func New(env string) *slog.Logger {
	return NewWithWriter(os.Stdout, env)
}

func NewWithWriter(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler)
}

// Noop discards everything. Used by tests and optional dependencies.
func Noop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Err returns an "error" attribute with the error text.
//
//	log.Error("failed to do something", logger.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}
