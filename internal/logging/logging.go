// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName = "rawbazaar"

// Setup installs the global logger. Development gets a console writer,
// everything else gets JSON lines. Unknown levels fall back to info.
func Setup(level string, env string) {
	log.Logger = New(os.Stderr, level, env)
	zerolog.SetGlobalLevel(parseLevel(level))
}

func New(out io.Writer, level string, env string) zerolog.Logger {
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
