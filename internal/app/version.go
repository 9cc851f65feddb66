package app

import (
	"fmt"
	"runtime"
)

// Set with -ldflags "-X github.com/Chauhan-saab2006/music--app/internal/app.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	GitTag    = ""
	BuildTime = "unknown"
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version   string
	GitCommit string
	GitTag    string
	BuildTime string
	GoVersion string
	Platform  string
}

// GetVersionInfo returns the build information of this binary.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		GitTag:    GitTag,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns the release tag when built from one, the version otherwise.
func (v VersionInfo) String() string {
	if v.GitTag != "" {
		return v.GitTag
	}
	return v.Version
}

// FullString is the one-line form written to the log at startup.
func (v VersionInfo) FullString() string {
	return fmt.Sprintf("tunedeck %s (commit: %s, built: %s)", v, v.GitCommit, v.BuildTime)
}
