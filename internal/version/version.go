// Package version exposes build-time version information.
// The variables are overridden at link time via -ldflags.
package version

//nolint:gochecknoglobals // These are build-time variables set via ldflags.
var (
	// Version is the semantic version of the build.
	Version = "1.0.0"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// BuildTime is the timestamp of the build.
	BuildTime = "unknown"
)

// Short returns the bare version string.
func Short() string {
	return Version
}

// Full returns the version together with commit and build time.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}
