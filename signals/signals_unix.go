//go:build !windows

package signals

import (
	"os"
	"syscall"
)

// SignalLookup maps the signal names accepted in configuration and on the
// command line to their os.Signal values.
var SignalLookup = map[string]os.Signal{
	"SIGHUP":   syscall.SIGHUP,
	"SIGINT":   syscall.SIGINT,
	"SIGTERM":  syscall.SIGTERM,
	"SIGQUIT":  syscall.SIGQUIT,
	"SIGUSR1":  syscall.SIGUSR1,
	"SIGUSR2":  syscall.SIGUSR2,
	"SIGWINCH": syscall.SIGWINCH,
	"SIGCHLD":  syscall.SIGCHLD,
}
