// Package buildinfo reports the version of the peoplepack binary.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/peoplepack/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/peoplepack/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)" \
//	    ./cmd/peoplepack
//
// Unstamped builds fall back to the module version recorded by the Go
// toolchain, so `go install ...@v0.3.0` still reports v0.3.0.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	if Version != "dev" {
		return
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, %s)\n", Version, Commit, Date)
}

// ServerHeader is the value of the Server header sent by the HTTP host.
func ServerHeader() string {
	return "peoplepack/" + Version
}
