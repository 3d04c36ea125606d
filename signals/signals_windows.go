//go:build windows

package signals

import (
	"os"
	"syscall"
)

// SignalLookup maps the signal names accepted in configuration and on the
// command line to their os.Signal values. Windows only has a meaningful
// subset of the Unix signal set.
var SignalLookup = map[string]os.Signal{
	"SIGHUP":  syscall.SIGHUP,
	"SIGINT":  syscall.SIGINT,
	"SIGTERM": syscall.SIGTERM,
	"SIGQUIT": syscall.SIGQUIT,
}
