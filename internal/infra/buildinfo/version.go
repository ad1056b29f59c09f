package buildinfo

import (
	"fmt"
	"runtime"
)

// Stamped at build time via -X; left at the defaults for dev builds.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build stamp in one marshalable value.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the build stamp. The Go version comes from the running
// runtime rather than an ldflags variable.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String renders the stamp for --version output.
func String() string {
	return fmt.Sprintf("%s (%s) built at %s", Version, Commit, BuildTime)
}
