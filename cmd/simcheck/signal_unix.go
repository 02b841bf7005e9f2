//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stop a running comparison or server.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
