package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the application logger. JSON output so log aggregation can
// index the structured attrs.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("service", "capital-ladder"))
}
