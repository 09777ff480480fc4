package update

import (
	"fmt"
	"runtime"
	"slices"
)

// Detect returns the current platform (OS and architecture)
func Detect() Platform {
	return Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
}

// Key returns the "<os>-<arch>" form used in manifests
func (p Platform) Key() string {
	return fmt.Sprintf("%s-%s", p.OS, p.Arch)
}

// BinaryName returns the release asset name for this platform
// e.g., "tether-darwin-arm64", "tether-windows-amd64.exe"
func (p Platform) BinaryName(prefix string) string {
	name := fmt.Sprintf("%s-%s", prefix, p.Key())
	if p.OS == "windows" {
		name += ".exe"
	}
	return name
}

// IsSupported returns true if this platform is supported
func (p Platform) IsSupported() bool {
	supportedPlatforms := map[string][]string{
		"darwin":  {"amd64", "arm64"},
		"linux":   {"amd64", "arm64"},
		"windows": {"amd64", "arm64"},
	}

	archs, ok := supportedPlatforms[p.OS]
	if !ok {
		return false
	}

	return slices.Contains(archs, p.Arch)
}
