// Package obslog is the runtime's internal structured logger: verbose-mode
// tracing, debug prints, and malformed-event warnings, all routed through
// github.com/rs/zerolog rather than the standard library's log package.
package obslog

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	current = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(zerolog.WarnLevel)
)

// Configure replaces the package logger. verbose raises the level to
// debug (matching DP_RTLIB_VERBOSE-style tracing); otherwise only
// warnings and above are emitted, keeping a production run's stderr
// quiet by default.
func Configure(w io.Writer, verbose bool) {
	lvl := zerolog.WarnLevel
	if verbose {
		lvl = zerolog.DebugLevel
	}
	l := zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	mu.Lock()
	current = l
	mu.Unlock()
}

// L returns the current package logger.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &current
}
