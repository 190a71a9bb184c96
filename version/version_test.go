package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "dev", "", ""

	info := Get("scribed")
	if info.Service != "scribed" {
		t.Errorf("expected service 'scribed', got %q", info.Service)
	}
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
}

func TestGetWithLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "1.0.0", "abc1234", "2026-01-15T10:30:00Z"

	info := Get("scribed")
	if !info.IsRelease {
		t.Error("1.0.0 should be a release")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("expected build year 2026, got %d", info.BuildDate.Year())
	}
}

func TestDirtyVersionIsNotRelease(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0-dirty"

	if Get("").IsRelease {
		t.Error("dirty version should not be a release")
	}
}

func TestApplyVCS(t *testing.T) {
	info := Info{Version: "dev"}
	applyVCS(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-03-01T08:00:00Z"},
	})
	if info.GitCommit != "0123456" {
		t.Errorf("expected commit truncated to 7 chars, got %q", info.GitCommit)
	}
	if !info.IsDirty {
		t.Error("expected dirty flag from vcs.modified")
	}
	if info.BuildTime != "2026-03-01T08:00:00Z" {
		t.Errorf("expected build time from vcs.time, got %q", info.BuildTime)
	}

	pinned := Info{GitCommit: "feedbee", BuildTime: "2025-01-01T00:00:00Z"}
	applyVCS(&pinned, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-03-01T08:00:00Z"},
	})
	if pinned.GitCommit != "feedbee" || pinned.BuildTime != "2025-01-01T00:00:00Z" {
		t.Errorf("ldflags values must win over vcs stamp, got %+v", pinned)
	}
}

func TestShortAndString(t *testing.T) {
	tests := []struct {
		name      string
		info      Info
		wantShort string
		contains  string
	}{
		{"dev only", Info{Version: "dev"}, "dev", "dev"},
		{"with commit", Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234", "1.0.0-abc1234"},
		{"dirty", Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true}, "1.0.0-abc1234-dirty", "dirty"},
		{"with service", Info{Service: "scribed", Version: "1.0.0"}, "1.0.0", "scribed 1.0.0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Short(); got != tc.wantShort {
				t.Errorf("Short() = %q, want %q", got, tc.wantShort)
			}
			if got := tc.info.String(); !strings.Contains(got, tc.contains) {
				t.Errorf("String() = %q, want it to contain %q", got, tc.contains)
			}
		})
	}
}
