package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON slog logger on stdout as the default and returns it.
// Development runs log at debug level.
func Setup(appEnv string) *slog.Logger {
	logger := New(os.Stdout, appEnv)
	slog.SetDefault(logger)
	return logger
}

func New(w io.Writer, appEnv string) *slog.Logger {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
