package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the build description served by /version and logged at startup.
type Info struct {
	Service   string    `json:"service,omitempty"`
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	BuildTime string    `json:"build_time,omitempty"`
	BuildDate time.Time `json:"-"`
	GoVersion string    `json:"go_version"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// Get returns build information tagged with the given service name.
func Get(service string) Info {
	info := Info{
		Service:   service,
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}

	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		applyVCS(&info, bi.Settings)
	}

	return info
}

func applyVCS(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = shortCommit(s.Value)
			}
		case "vcs.modified":
			info.IsDirty = s.Value == "true"
		case "vcs.time":
			if info.BuildTime != "" {
				continue
			}
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
				info.BuildDate = t
				info.BuildTime = s.Value
			}
		}
	}
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// Short renders version and commit, e.g. "1.2.0-abc1234".
func (i Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	if i.IsDirty {
		return fmt.Sprintf("%s-%s-dirty", i.Version, i.GitCommit)
	}
	return fmt.Sprintf("%s-%s", i.Version, i.GitCommit)
}

// String renders the short version plus the build date when known.
func (i Info) String() string {
	s := i.Short()
	if i.Service != "" {
		s = i.Service + " " + s
	}
	if !i.BuildDate.IsZero() {
		s += fmt.Sprintf(" (built %s)", i.BuildDate.UTC().Format(time.RFC3339))
	}
	return s
}
