// Package version holds the daemon's build-time identity, printed by
// --version and included in the first log line on every run.
package version

import "fmt"

var (
	// Name is the daemon's binary name, used in --help/--version output and
	// as the syslog ident when none is configured.
	Name = "ncd"

	// Version is the release version, overridden at build time via
	// -ldflags.
	Version = "0.1.0"

	// GitCommit is the commit the binary was built from, overridden at
	// build time via -ldflags.
	GitCommit = ""

	// VersionPrerelease marks a non-final build ("dev", "beta1", ...),
	// overridden at build time via -ldflags.
	VersionPrerelease = "dev"
)

// HumanVersion is the full version string, e.g. "ncd v0.1.0-dev (deadbeef)".
var HumanVersion = func() string {
	v := fmt.Sprintf("%s v%s", Name, Version)
	if VersionPrerelease != "" {
		v += fmt.Sprintf("-%s", VersionPrerelease)
	}
	if GitCommit != "" {
		v += fmt.Sprintf(" (%s)", GitCommit)
	}
	return v
}()
