// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the global structured logger used by the service.  It starts
// out as slog.Default so packages can log before InitLogger runs (tests).
var Logger = slog.Default()

// InitLogger initializes the global Logger.  Production environments get a
// JSON handler at info level; anything else gets a text handler at debug.
func InitLogger(env string) *slog.Logger {
	Logger = NewLogger(os.Stdout, env)
	slog.SetDefault(Logger)
	return Logger
}

// NewLogger builds a logger for env writing to w.
func NewLogger(w io.Writer, env string) *slog.Logger {
	switch strings.ToLower(env) {
	case "prod", "production":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
