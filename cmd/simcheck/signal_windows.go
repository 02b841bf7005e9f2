//go:build windows

package main

import "os"

// shutdownSignals stop a running comparison or server. Windows has no SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt}
