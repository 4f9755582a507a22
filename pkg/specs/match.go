package specs

import (
	"context"
	"sort"

	"github.com/specdex/specdex/pkg/observability"
	"github.com/specdex/specdex/pkg/platform"
	"github.com/specdex/specdex/pkg/source"
)

// Match pairs a tuple with the source it came from.
type Match struct {
	Tuple  Tuple
	Source *source.Source
}

// SpecMatch pairs a fully resolved descriptor with the source it came from.
type SpecMatch struct {
	Spec   *Descriptor
	Source *source.Source
}

// PlatformMismatch records releases that satisfied a dependency's name and
// version constraint but were excluded by platform filtering. One record is
// kept per dependency name; the platforms list is deduplicated.
type PlatformMismatch struct {
	Name      string
	Platforms []platform.Platform
}

func (m *PlatformMismatch) add(p platform.Platform) {
	for _, have := range m.Platforms {
		if have == p {
			return
		}
	}
	m.Platforms = append(m.Platforms, p)
}

// Search finds every tuple across all sources that satisfies the
// dependency. When matchPlatform is true, tuples for foreign platforms are
// excluded and reported through the returned mismatch record instead; the
// record is nil when nothing was excluded.
//
// Results are ordered by name, then by semantic version, with the source
// order breaking remaining ties stably.
func (f *Fetcher) Search(ctx context.Context, dep Dependency, matchPlatform bool) ([]Match, *PlatformMismatch, error) {
	avail, err := f.Available(ctx, dep.QueryType())
	if err != nil {
		return nil, nil, err
	}

	local := platform.Local()
	var mismatch *PlatformMismatch
	var matches []Match
	for _, src := range f.sources {
		for _, t := range avail[src] {
			if !dep.Matches(t.Name, t.Version) {
				continue
			}
			if matchPlatform && !local.Match(t.Platform) {
				if mismatch == nil {
					mismatch = &PlatformMismatch{Name: dep.Name}
				}
				mismatch.add(t.Platform)
				continue
			}
			matches = append(matches, Match{Tuple: t, Source: src})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return compareTuples(matches[i].Tuple, matches[j].Tuple) < 0
	})
	return matches, mismatch, nil
}

// SpecForDependency resolves full descriptors for every release matching
// the dependency. Releases whose descriptor cannot be fetched are skipped
// rather than failing the whole resolution; availability of some specs
// beats completeness. Each skip is reported through the index hooks so
// callers can tell a thin result from a failing source.
func (f *Fetcher) SpecForDependency(ctx context.Context, dep Dependency, matchPlatform bool) ([]SpecMatch, *PlatformMismatch, error) {
	matches, mismatch, err := f.Search(ctx, dep, matchPlatform)
	if err != nil {
		return nil, nil, err
	}

	specs := make([]SpecMatch, 0, len(matches))
	for _, m := range matches {
		d, err := f.FetchDescriptor(ctx, m.Tuple, m.Source)
		if err != nil {
			observability.Index().OnDescriptorSkip(ctx, m.Source.String(), m.Tuple.Name, err)
			continue
		}
		specs = append(specs, SpecMatch{Spec: d, Source: m.Source})
	}
	return specs, mismatch, nil
}
