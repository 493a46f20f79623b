package main

import (
	"log/slog"
	"os"
)

// newLogger builds the process logger. Verbose mode lowers the level to
// debug; otherwise info and above are emitted.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
