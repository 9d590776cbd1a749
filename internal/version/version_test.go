package version

import (
	"strings"
	"testing"
)

func TestShort(t *testing.T) {
	if got := Short(); got != Version {
		t.Errorf("Short() = %q, want %q", got, Version)
	}
}

func TestInfo(t *testing.T) {
	info := Info()
	for _, want := range []string{"paperstream", Version, GitCommit} {
		if !strings.Contains(info, want) {
			t.Errorf("Info() = %q, missing %q", info, want)
		}
	}
}

func TestMap(t *testing.T) {
	m := Map()
	for _, key := range []string{"version", "git_commit", "build_date", "go_version", "os", "arch"} {
		if m[key] == "" {
			t.Errorf("Map()[%q] is empty", key)
		}
	}
}
