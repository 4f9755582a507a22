package specs

import (
	goversion "github.com/hashicorp/go-version"

	"github.com/specdex/specdex/pkg/errors"
)

// Dependency is a single query against the spec universe: a package name,
// an optional version constraint, and flags widening or narrowing the view.
// Dependencies are stateless; one value can serve many queries.
type Dependency struct {
	Name        string
	Requirement goversion.Constraints // empty matches any version
	Prerelease  bool                  // include prerelease variants
	Latest      bool                  // consider only the newest released variant
}

// NewDependency builds a Dependency from a raw constraint string such as
// ">= 7.0, < 8" or "~> 1.2". An empty constraint matches any version.
func NewDependency(name, constraint string) (*Dependency, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	d := &Dependency{Name: name}
	if constraint != "" {
		req, err := goversion.NewConstraint(constraint)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDependency, err, "invalid constraint %q for %s", constraint, name)
		}
		d.Requirement = req
	}
	return d, nil
}

// Matches reports whether a (name, version) pair satisfies the dependency.
// Entries without a parsable version never match.
func (d *Dependency) Matches(name, ver string) bool {
	if name != d.Name {
		return false
	}
	v, err := goversion.NewVersion(ver)
	if err != nil {
		return false
	}
	if len(d.Requirement) == 0 {
		return true
	}
	return d.Requirement.Check(v)
}

// QueryType selects the index view for this dependency: prerelease-allowed
// queries need the complete view, latest-only the latest view, everything
// else the released view.
func (d *Dependency) QueryType() QueryType {
	switch {
	case d.Prerelease:
		return QueryComplete
	case d.Latest:
		return QueryLatest
	default:
		return QueryReleased
	}
}

// String renders the dependency for logs and diagnostics.
func (d *Dependency) String() string {
	if len(d.Requirement) == 0 {
		return d.Name
	}
	return d.Name + " (" + d.Requirement.String() + ")"
}
