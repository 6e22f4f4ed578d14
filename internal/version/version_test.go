package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = orig })
}

func withVars(t *testing.T, version, commit, dirty, date string) {
	t.Helper()
	v, c, d, b := Version, Commit, Dirty, BuildDate
	Version, Commit, Dirty, BuildDate = version, commit, dirty, date
	t.Cleanup(func() { Version, Commit, Dirty, BuildDate = v, c, d, b })
}

func TestGet(t *testing.T) {
	installed := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name       string
		vars       [4]string
		bi         *debug.BuildInfo
		wantVer    string
		wantCommit string
		wantDirty  bool
		wantDate   string
	}{
		{
			name:       "ldflags win",
			vars:       [4]string{"2.0.0", "fff", "false", "2026-05-05T00:00:00Z"},
			bi:         installed,
			wantVer:    "2.0.0",
			wantCommit: "fff",
			wantDirty:  true,
			wantDate:   "2026-05-05T00:00:00Z",
		},
		{
			name:       "build info fallback",
			vars:       [4]string{"dev", "unknown", "false", "unknown"},
			bi:         installed,
			wantVer:    "1.2.3",
			wantCommit: "abc123",
			wantDirty:  true,
			wantDate:   "2026-01-02T03:04:05Z",
		},
		{
			name:       "devel build",
			vars:       [4]string{"dev", "unknown", "false", "unknown"},
			bi:         &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			wantVer:    "dev",
			wantCommit: "unknown",
			wantDate:   "unknown",
		},
		{
			name:       "no build info",
			vars:       [4]string{"dev", "unknown", "true", "unknown"},
			wantVer:    "dev",
			wantCommit: "unknown",
			wantDirty:  true,
			wantDate:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVars(t, tt.vars[0], tt.vars[1], tt.vars[2], tt.vars[3])
			withBuildInfo(t, tt.bi)

			got := Get()
			if got.Version != tt.wantVer || got.Commit != tt.wantCommit ||
				got.Dirty != tt.wantDirty || got.BuildDate != tt.wantDate {
				t.Errorf("Get() = %+v, want version=%s commit=%s dirty=%v date=%s",
					got, tt.wantVer, tt.wantCommit, tt.wantDirty, tt.wantDate)
			}
		})
	}
}

func TestString(t *testing.T) {
	withBuildInfo(t, nil)

	withVars(t, "1.0.0", "abc", "false", "unknown")
	if got := String(); got != "1.0.0" {
		t.Errorf("String() = %q, want 1.0.0", got)
	}

	withVars(t, "1.0.0", "abc", "true", "unknown")
	if got := String(); got != "1.0.0-dirty" {
		t.Errorf("String() = %q, want 1.0.0-dirty", got)
	}
}

func TestFull(t *testing.T) {
	withBuildInfo(t, nil)
	withVars(t, "1.0.0", "abc123", "false", "2026-01-01T00:00:00Z")

	full := Full()
	for _, want := range []string{"scrapemd 1.0.0\n", "Commit:     abc123", "Built:      2026-01-01T00:00:00Z", "OS/Arch:"} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() missing %q:\n%s", want, full)
		}
	}
	if strings.Contains(full, "Dirty") {
		t.Errorf("clean build should not report dirty:\n%s", full)
	}
}
