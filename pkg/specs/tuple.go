package specs

import (
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/specdex/specdex/pkg/platform"
)

// Tuple identifies one package variant in an index without its descriptor
// payload: a name, a version, and the platform it was built for.
type Tuple struct {
	Name     string
	Version  string
	Platform platform.Platform
}

// FileName returns the dash-joined identity used in descriptor file names:
// "name-version" with "-platform" appended for non-universal platforms.
func (t Tuple) FileName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{t.Name, t.Version, t.Platform.String()} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-")
}

// String renders the tuple for logs and CLI output.
func (t Tuple) String() string {
	if t.Platform.IsAny() {
		return t.Name + " " + t.Version
	}
	return t.Name + " " + t.Version + " (" + t.Platform.String() + ")"
}

// HasVersion reports whether the tuple carries a version at all. Indexes can
// contain placeholder rows without one.
func (t Tuple) HasVersion() bool {
	return t.Version != ""
}

// Prerelease reports whether the tuple's version is a prerelease.
// Missing or unparsable versions are not prereleases.
func (t Tuple) Prerelease() bool {
	v, err := goversion.NewVersion(t.Version)
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}

// compareTuples orders tuples by name, then by semantic version. Versions
// that don't parse fall back to a lexicographic comparison so that sorting
// stays total. Equal name+version pairs compare equal; callers rely on a
// stable sort to keep their encountered order.
func compareTuples(a, b Tuple) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	va, errA := goversion.NewVersion(a.Version)
	vb, errB := goversion.NewVersion(b.Version)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return strings.Compare(a.Version, b.Version)
}
