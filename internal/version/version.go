package version

// Package version holds build-time version metadata.
// Values are intended to be overridden via -ldflags during build.

// These variables are set via ldflags; provide sensible defaults for dev.
var (
	Version = "dev"     // e.g., v1.2.3 or git describe output
	Commit  = "none"    // short git SHA
	Date    = "unknown" // build UTC timestamp
)

type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Current returns the build metadata as a single struct.
func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}
