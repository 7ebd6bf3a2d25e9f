// Package bflog provides the CLI's logging conventions: a bare,
// timestamp-free stdlib logger rather than a structured logging library,
// since the CLI's only "logging" is short status lines and fatal
// diagnostics to a terminal.
package bflog

import (
	"io"
	"log"
	"os"
)

// Logger is a thin wrapper over *log.Logger with the flags this CLI
// wants baked in.
type Logger struct {
	*log.Logger
}

// New returns a Logger writing to w with no date/time prefix.
func New(w io.Writer) *Logger {
	return &Logger{log.New(w, "", 0)}
}

// Default returns a Logger writing to os.Stderr, for callers that don't
// need to redirect log output.
func Default() *Logger {
	return New(os.Stderr)
}
