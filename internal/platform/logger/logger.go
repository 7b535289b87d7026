package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Handlers and services take
// it by injection so tests can swap in a silent one.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
