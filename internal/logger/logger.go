package logger

import (
	"io"
	"log/slog"
)

const (
	EnvLocal = "local"
	EnvProd  = "production"
	EnvTest  = "test"
	EnvDev   = "development"
)

// SetupLogger builds the process logger for env. The audit CLI passes
// os.Stderr so reports on stdout stay clean.
func SetupLogger(env string, w io.Writer) *slog.Logger {
	var log *slog.Logger
	switch env {
	case EnvLocal:
		log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case EnvTest, EnvDev:
		log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case EnvProd:
		log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return log
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
