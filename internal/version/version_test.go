package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	defer func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	}()

	Version = "1.0.0"
	Commit = "abc123def456"
	Date = "2026-01-01T12:00:00Z"

	info := GetInfo()
	if info.Version != "1.0.0" || info.Commit != "abc123def456" || info.Date != "2026-01-01T12:00:00Z" {
		t.Errorf("GetInfo() = %+v", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %v, want %v", info.GoVersion, runtime.Version())
	}
	if want := runtime.GOOS + "/" + runtime.GOARCH; info.Platform != want {
		t.Errorf("Platform = %v, want %v", info.Platform, want)
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "1.2.3", Commit: "abcdef1234567", Date: "today", GoVersion: "go1.24", Platform: "linux/amd64"}

	s := info.String()
	for _, want := range []string{"hisctl 1.2.3", "(abcdef12)", "built today", "go1.24", "linux/amd64"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}

	if got := info.UserAgent(); got != "hisctl/1.2.3 (linux/amd64)" {
		t.Errorf("UserAgent() = %q", got)
	}
}
