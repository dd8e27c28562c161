// Package buildinfo carries the version stamped in at link time.
package buildinfo

import "fmt"

var (
	// Version will be set via ldflags during build.
	Version = "dev"
	// Commit will be set via ldflags during build.
	Commit = "none"
	// Date will be set via ldflags during build.
	Date = "unknown"
)

// String formats the build for --version output.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}

// MetricsRecorder receives the build labels.
type MetricsRecorder interface {
	SetBuildInfo(version, commit string)
}

// Publish reports the running build to m.
func Publish(m MetricsRecorder) {
	m.SetBuildInfo(Version, Commit)
}
