package common

// Build metadata, injected with -ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// VersionInfo describes the running binary for the version endpoint.
type VersionInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// GetVersion returns the semantic version string.
func GetVersion() string {
	return Version
}

// GetVersionInfo returns the full build description.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Service:   "trialwhisperer",
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
}
