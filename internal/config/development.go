package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Development reports whether DEVELOPMENT is set to anything but "0".
func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0"
}

// NewLogger returns a colored debug logger in development and a JSON
// logger otherwise.
func NewLogger(w io.Writer) *slog.Logger {
	if Development() {
		return slog.New(tint.NewHandler(w, &tint.Options{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}
