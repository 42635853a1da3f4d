// Package buildinfo carries the version stamp baked into the moldbank
// binary at release time.
package buildinfo

import "fmt"

// Populated via -ldflags "-X" by the release build; the zero values
// identify a locally built binary.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the stamp the way the root command's --version prints
// it.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
