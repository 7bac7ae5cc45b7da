// Package version reports build information set at link time.
package version

//nolint:gochecknoglobals // Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the release version, "dev" for local builds.
func GetVersion() string {
	return version
}

// GetCommit returns the git commit the binary was built from.
func GetCommit() string {
	return commit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}
