// Package obslog constructs a zerolog.Logger: a single writer and
// level selected once at construction, never re-derived per call site.
package obslog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a logger writing structured events to w. If w is nil,
// os.Stderr is used.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Nop returns a logger that discards all events, for tests and for
// embedders that don't want scheduler-internal logging.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
