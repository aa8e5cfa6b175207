package version

import (
	"fmt"
	"runtime"
)

const valueNotProvided = "[not provided]"

// stamped into the binary via -ldflags at release time
var (
	version      = valueNotProvided
	gitCommit    = valueNotProvided
	gitTreeState = valueNotProvided
	buildDate    = valueNotProvided
)

var platform = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)

// Version collects everything knowable about this binary's provenance.
type Version struct {
	Version      string `json:"version"`
	GitCommit    string `json:"gitCommit"`
	GitTreeState string `json:"gitTreeState"`
	BuildDate    string `json:"buildDate"`
	GoVersion    string `json:"goVersion"`
	Compiler     string `json:"compiler"`
	Platform     string `json:"platform"`
}

// FromBuild reports the version details stamped into this binary.
func FromBuild() Version {
	return Version{
		Version:      version,
		GitCommit:    gitCommit,
		GitTreeState: gitTreeState,
		BuildDate:    buildDate,
		GoVersion:    runtime.Version(),
		Compiler:     runtime.Compiler,
		Platform:     platform,
	}
}
