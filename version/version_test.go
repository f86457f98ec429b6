package version

import (
	"runtime"
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit := Version, GitCommit
	return func() {
		Version = origVersion
		GitCommit = origCommit
	}
}

func TestGetDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected %q, got %q", runtime.Version(), info.GoVersion)
	}
}

func TestGetTruncatesCommit(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	GitCommit = "abc1234def5678"

	info := Get()
	if !info.IsRelease {
		t.Error("1.0.0 should be a release")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected 'abc1234', got %q", info.GitCommit)
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "1.0.0"}, "1.0.0"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.want {
			t.Errorf("Short() = %q, want %q", got, tc.want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"

	ua := UserAgent("player")
	if !strings.HasPrefix(ua, "player vimeonet/1.2.0 (") {
		t.Errorf("unexpected user agent %q", ua)
	}
	if !strings.Contains(ua, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("expected platform in %q", ua)
	}
	if got := UserAgent("vimeonet"); !strings.HasPrefix(got, "vimeonet/1.2.0") {
		t.Errorf("expected no duplicate product, got %q", got)
	}
}
