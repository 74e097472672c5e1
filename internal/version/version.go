package version

import "fmt"

var (
	// Version is the release version, set with -ldflags at build time.
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String is the one-line banner printed by -version.
func String() string {
	return fmt.Sprintf("pdwgen %s (commit %s, built %s)", Version, GitSHA, BuildTime)
}
