package buildinfo

import (
	"runtime/debug"
	"testing"
)

func stamp(t *testing.T, version, commit, date string) {
	t.Helper()
	origV, origC, origD, origRead := Version, Commit, Date, readBuildInfo
	t.Cleanup(func() {
		Version, Commit, Date, readBuildInfo = origV, origC, origD, origRead
	})
	Version, Commit, Date = version, commit, date
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
}

func TestCurrent_Inline(t *testing.T) {
	stamp(t, "2026.1.2", "abcdef1234567890", "2026-01-14T11:36:49Z")
	if got := Current().Inline(); got != "v2026.1.2 · abcdef1 · 2026-01-14" {
		t.Fatalf("unexpected build info: %q", got)
	}

	stamp(t, "dev", "none", "unknown")
	if got := Current().Inline(); got != "dev" {
		t.Fatalf("unexpected build info: %q", got)
	}
}

func TestDisplayVersion(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1.2.3", "v1.2.3"},
		{"v1.2.3", "v1.2.3"},
		{"nightly", "nightly"},
		{"", "dev"},
		{"(devel)", "dev"},
	}
	for _, tt := range tests {
		stamp(t, tt.in, "", "")
		if got := DisplayVersion(); got != tt.want {
			t.Fatalf("DisplayVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayVersion_FallsBackToModuleVersion(t *testing.T) {
	stamp(t, "dev", "", "")
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v0.4.1"}}, true
	}
	if got := DisplayVersion(); got != "v0.4.1" {
		t.Fatalf("expected module version, got %q", got)
	}
}
