// Package logutil holds the process-wide debug logger.
package logutil

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Discard is a Logger that ignores all loggings.
var Discard = log.New(io.Discard, "", 0)

var debug atomic.Pointer[log.Logger]

func init() {
	debug.Store(Discard)
}

// SetVerbose turns debug logging to stderr on or off.
func SetVerbose(on bool) {
	if on {
		debug.Store(log.New(os.Stderr, "debug: ", log.LstdFlags))
		return
	}
	debug.Store(Discard)
}

// Debugf logs through the debug logger. It is a no-op unless SetVerbose(true)
// was called.
func Debugf(format string, args ...any) {
	debug.Load().Printf(format, args...)
}
