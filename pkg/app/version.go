package app

import (
	"fmt"
	"runtime"
)

// Build information, overridden at link time via -ldflags.
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the build version string.
func GetVersion() string {
	return Version
}

// FullVersion returns a multi-line version report including the Go
// runtime and platform.
func FullVersion() string {
	return fmt.Sprintf("Version: %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s\nPlatform: %s/%s",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
