// Package logger builds the [bullets.Logger] instances used across
// mergegate: a leveled stdout logger for commands and a silent one for
// tests and library defaults.
package logger

import (
	"io"
	"os"

	"github.com/sgaunet/bullets"
)

// NewLogger returns a logger writing to stdout at the given level.
// Accepted levels are "debug", "info", "warn" and "error"; anything else
// falls back to "info".
func NewLogger(logLevel string) *bullets.Logger {
	log := bullets.New(os.Stdout)
	log.SetLevel(parseLevel(logLevel))
	return log
}

// NoLogger returns a logger that discards everything. Components take it
// as their default so logging stays optional.
func NoLogger() *bullets.Logger {
	log := bullets.New(io.Discard)
	log.SetLevel(bullets.FatalLevel)
	return log
}

func parseLevel(logLevel string) bullets.Level {
	switch logLevel {
	case "debug":
		return bullets.DebugLevel
	case "warn":
		return bullets.WarnLevel
	case "error":
		return bullets.ErrorLevel
	default:
		return bullets.InfoLevel
	}
}
