// Package version reports build metadata stamped in at link time
package version

import "runtime"

// BuildInfo identifies a running binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// Info returns the build information for service. Stamp with
// -ldflags "-X 'comicvault/internal/core/version.version=v0.3.0'
// -X 'comicvault/internal/core/version.commit=abcd' -X 'comicvault/internal/core/version.date=2026-01-02'"
func Info(service string) BuildInfo {
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
		Go:      runtime.Version(),
	}
}

// Commit is the stamped commit, "none" for local builds
func Commit() string { return commit }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
