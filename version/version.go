// Package version exposes build metadata for the subtitler binary.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/subtitler/version.Version=1.2.0 \
//	  -X github.com/kbukum/subtitler/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Fields left empty are taken from the module build info when present.
package version

import (
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
	GoVersion = ""
)

var buildInfo = sync.OnceValues(debug.ReadBuildInfo)

type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	GitBranch string    `json:"git_branch"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// Get merges the link-time variables with the build info. A binary with
// no build time reports the current time.
func Get() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}
	info.BuildDate, _ = time.Parse(time.RFC3339, BuildTime)
	if bi, ok := buildInfo(); ok {
		info.fill(bi)
	}
	if info.BuildDate.IsZero() {
		info.BuildDate = time.Now().UTC()
		info.BuildTime = info.BuildDate.Format(time.RFC3339)
	}
	return info
}

// fill copies VCS settings into fields the linker left empty.
func (i *Info) fill(bi *debug.BuildInfo) {
	if i.GoVersion == "" {
		i.GoVersion = bi.GoVersion
	}
	vcs := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		vcs[s.Key] = s.Value
	}
	if rev := vcs["vcs.revision"]; i.GitCommit == "" && rev != "" {
		i.GitCommit = rev[:min(len(rev), 7)]
	}
	i.IsDirty = vcs["vcs.modified"] == "true"
	if i.BuildTime == "" {
		if t, err := time.Parse(time.RFC3339, vcs["vcs.time"]); err == nil {
			i.BuildDate, i.BuildTime = t, vcs["vcs.time"]
		}
	}
}

// Short is "<version>[-<commit>][-dirty]".
func (i *Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	s := i.Version + "-" + i.GitCommit
	if i.IsDirty {
		s += "-dirty"
	}
	return s
}

// String adds a non-default branch, the build date and the Go version to
// Short.
func (i *Info) String() string {
	var b strings.Builder
	b.WriteString(i.Version)
	if i.GitCommit != "" {
		b.WriteString("-" + i.GitCommit)
	}
	if i.GitBranch != "" && i.GitBranch != "main" && i.GitBranch != "master" {
		b.WriteString("-" + i.GitBranch)
	}
	if i.IsDirty {
		b.WriteString("-dirty")
	}
	b.WriteString(" (built " + i.BuildDate.UTC().Format(time.RFC3339) + ", " + i.GoVersion + ")")
	return b.String()
}
