// Package version carries build metadata stamped in through ldflags:
//
//	go build -ldflags "-X <module>/internal/version.Version=v1.2.3"
package version

// Set at build time. The defaults describe a from-source dev build.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Build groups the stamped values for display.
type Build struct {
	Version   string
	GitCommit string
	BuildDate string
}

// Info returns the metadata of the running binary.
func Info() Build {
	return Build{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
}
