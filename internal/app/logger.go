package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. JSON output is for the deployed
// console behind a log shipper; the text handler is the local default.
func NewLogger(cfg *Config) *slog.Logger {
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	}
	return slog.New(handler).With(slog.String("service", "ajovest-console"))
}
