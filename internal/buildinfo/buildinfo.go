// Package buildinfo holds version information injected at build time via ldflags.
//
//	go build -ldflags "-X github.com/shelltint/shelltint/internal/buildinfo.Version=1.2.0"
package buildinfo

import "fmt"

var (
	Version    = "dev"
	Codename   = "unknown"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Short returns "Version (Codename)" for banners and tooltips.
func Short() string {
	if Codename == "" || Codename == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Codename)
}
