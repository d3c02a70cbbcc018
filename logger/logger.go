package logger

import (
	"log/slog"
	"os"
)

// NewLogger returns the JSON logger shared by every stage of a run.
func NewLogger() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, nil)
	logger := slog.New(handler)
	return logger
}
