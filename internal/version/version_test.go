package version

import (
	"strings"
	"testing"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	// Version should always be set
	if info.Version == "" {
		t.Error("Version should not be empty")
	}

	// Platform should be set
	if !strings.Contains(info.Platform, "/") {
		t.Error("Platform should contain OS/ARCH format")
	}

	// Go version should be set
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Error("GoVersion should start with 'go'")
	}
}

func TestGetVersionString(t *testing.T) {
	versionStr := GetVersionString()

	if !strings.Contains(versionStr, "caselink") {
		t.Error("Version string should contain 'caselink'")
	}

	if !strings.Contains(versionStr, Version) {
		t.Error("Version string should contain the version number")
	}
}

func TestGetDetailedVersionString(t *testing.T) {
	detailed := GetDetailedVersionString()

	expectedFields := []string{
		"caselink",
		"Git commit:",
		"Build date:",
		"Go version:",
		"Platform:",
	}

	for _, field := range expectedFields {
		if !strings.Contains(detailed, field) {
			t.Errorf("Detailed version string should contain '%s'", field)
		}
	}
}

func TestIsRelease(t *testing.T) {
	// Dev builds carry an unknown commit hash, so by default this is not a release
	if GitCommit == "unknown" && IsRelease() {
		t.Error("IsRelease() should be false without an injected git commit")
	}
}
