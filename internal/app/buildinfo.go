package app

import "fmt"

// Build information populated via -ldflags at build time by CI.
var (
    BuildVersion = "0.0.0-dev"
    BuildCommit  = "unknown"
    BuildDate    = "unknown"
)

// VersionString formats the build information for -version and startup logs.
func VersionString() string {
    return fmt.Sprintf("newsbrief %s (commit %s, built %s)", BuildVersion, BuildCommit, BuildDate)
}
