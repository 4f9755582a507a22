// Package platform describes the target platform of a package variant and
// the compatibility rules between platforms.
//
// A platform is a cpu-os-version triple serialized as a dash-joined string
// (e.g. "x86_64-linux", "arm64-darwin-23"). The zero value is the universal
// platform, which matches everything; packages without native extensions
// ship as universal.
package platform

import (
	"runtime"
	"strings"
)

// Platform identifies the target system of a package variant.
type Platform struct {
	CPU     string // CPU architecture (e.g. "x86_64", "arm64"); "universal" or empty matches any
	OS      string // Operating system (e.g. "linux", "darwin")
	Version string // OS version qualifier (e.g. "23"); empty matches any
}

// Any is the universal platform. It matches every other platform and is used
// for packages that carry no native code.
var Any = Platform{}

// Parse converts a dash-joined platform string into a Platform.
// An empty string yields the universal platform. One segment is taken as the
// OS, two as cpu-os, three or more as cpu-os-version (the version may itself
// contain dashes).
func Parse(s string) Platform {
	s = strings.TrimSpace(s)
	if s == "" {
		return Any
	}
	parts := strings.SplitN(s, "-", 3)
	switch len(parts) {
	case 1:
		return Platform{OS: parts[0]}
	case 2:
		return Platform{CPU: parts[0], OS: parts[1]}
	default:
		return Platform{CPU: parts[0], OS: parts[1], Version: parts[2]}
	}
}

// String returns the dash-joined form. The universal platform renders as "".
func (p Platform) String() string {
	if p.IsAny() {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, s := range []string{p.CPU, p.OS, p.Version} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-")
}

// IsAny reports whether p is the universal platform.
func (p Platform) IsAny() bool {
	return p.CPU == "" && p.OS == "" && p.Version == ""
}

// Match reports whether a package built for other can run on p.
// The universal platform matches in either direction. Otherwise the OS must
// match exactly, the CPU must match unless either side is "universal", and
// the version must match unless either side leaves it empty.
func (p Platform) Match(other Platform) bool {
	if p.IsAny() || other.IsAny() {
		return true
	}
	if p.OS != other.OS {
		return false
	}
	if p.CPU != other.CPU && p.CPU != "universal" && other.CPU != "universal" && p.CPU != "" && other.CPU != "" {
		return false
	}
	if p.Version != "" && other.Version != "" && p.Version != other.Version {
		return false
	}
	return true
}

// Local returns the platform of the running process.
func Local() Platform {
	return Platform{CPU: runtime.GOARCH, OS: runtime.GOOS}
}
