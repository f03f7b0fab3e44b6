// Package logging wires up rs/zerolog the same way once per binary: a
// console writer in interactive use, level selection from --debug/--quiet,
// and --quiet additionally silencing the input subcommand entirely so only
// the bare result reaches stdout.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a Logger at the level implied by debug/quiet. quietSilent, when
// true, disables logging outright (the input subcommand's --quiet behavior);
// otherwise quiet only raises the level to Warn.
func New(debug, quiet, quietSilent bool) zerolog.Logger {
	if quiet && quietSilent {
		return zerolog.Nop()
	}

	level := zerolog.InfoLevel
	switch {
	case debug:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.WarnLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
