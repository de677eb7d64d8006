// Package buildinfo carries the version stamped into the binary at link time.
package buildinfo

import (
	"runtime/debug"
	"strings"
	"time"
)

// Set with -ldflags "-X github.com/gwportal/gwportal-cli/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info is the version triple as printed by `gwportal version`.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Date    string `json:"date,omitempty"`
}

func Current() Info {
	return Info{Version: DisplayVersion(), Commit: shortCommit(Commit), Date: shortDate(Date)}
}

// Inline joins the non-empty parts, e.g. "v1.4.0 · 3f2a9c1 · 2026-01-14".
func (i Info) Inline() string {
	parts := []string{i.Version}
	for _, p := range []string{i.Commit, i.Date} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}

// DisplayVersion returns the user-facing version. Unstamped builds fall back
// to the module version recorded by `go install pkg@version`, then to "dev".
// Bare numeric versions get a "v" prefix.
func DisplayVersion() string {
	v := strings.TrimSpace(Version)
	if isDev(v) {
		if bi, ok := readBuildInfo(); ok {
			v = strings.TrimSpace(bi.Main.Version)
		}
	}
	switch {
	case isDev(v):
		return "dev"
	case v[0] >= '0' && v[0] <= '9':
		return "v" + v
	default:
		return v
	}
}

func isDev(v string) bool {
	return v == "" || v == "dev" || v == "(devel)"
}

func shortCommit(commit string) string {
	c := strings.TrimSpace(commit)
	if c == "none" {
		return ""
	}
	if len(c) > 7 {
		return c[:7]
	}
	return c
}

func shortDate(date string) string {
	d := strings.TrimSpace(date)
	if d == "unknown" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, d); err == nil {
		return t.Format("2006-01-02")
	}
	if len(d) > 10 {
		return d[:10]
	}
	return d
}
