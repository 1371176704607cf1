// Package buildinfo carries release metadata injected at link time.
package buildinfo

// Set via -ldflags by the release pipeline. Empty for local builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

// VersionString returns the injected version, or "dev" for local builds.
func VersionString() string {
	if Version == "" {
		return "dev"
	}
	return Version
}
