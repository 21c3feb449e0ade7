// Package version provides build-time version information for the application.
// Values are injected with -ldflags "-X translateapp/internal/version.Version=...".
package version

import "fmt"

var (
	// Version is the application version (e.g., git tag or "dev")
	Version = "dev"
	// Commit is the git commit hash
	Commit = "dev"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Info describes the running build
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
}

// Get returns the build information for the named service
func Get(service string) Info {
	return Info{Service: service, Version: Version, Commit: Commit, BuildTime: BuildTime}
}

// String formats the build information for --version output
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime)
}
