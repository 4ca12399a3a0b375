//go:build !unix

package app

import (
	"os"
	"syscall"
)

// Windows only delivers a limited set of signals.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
