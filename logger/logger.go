// Package logger provides the package-level logger used across the solver
// library. The default logger writes human-readable output to stderr and
// filters everything below Warn, so the library is silent in normal use;
// call Set with a more verbose logger to observe constraint building and
// search events, which are emitted at Debug level.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	logger = zerolog.New(output).With().Timestamp().Logger().Level(zerolog.WarnLevel)
}

// Logger returns the current logger. A pointer is returned because
// zerolog's level methods have pointer receivers.
func Logger() *zerolog.Logger {
	return &logger
}

// Set replaces the current logger.
func Set(newLogger zerolog.Logger) {
	logger = newLogger
}

// Disable silences the logger entirely. Use Set to re-enable it.
func Disable() {
	logger = zerolog.Nop()
}
