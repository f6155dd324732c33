package logger

import (
	"log/slog"
	"os"
)

func Load(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
