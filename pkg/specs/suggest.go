package specs

import (
	"context"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/specdex/specdex/pkg/platform"
)

// maxSuggestions caps how many alternatives Suggest returns.
const maxSuggestions = 5

// Suggest returns up to five package names similar to the query, for "did
// you mean" output after a failed lookup. Candidates come from the latest
// view across all sources, restricted to the local platform. Matching is
// case-insensitive on the query side only: names are compared lowercased
// but returned in their original casing.
//
// An exact (case-folded) hit returns immediately as the single suggestion.
// Otherwise names at edit distance >= len(query)/2 are dropped, and the
// survivors are ordered by distance with source order breaking ties.
func (f *Fetcher) Suggest(ctx context.Context, query string) ([]string, error) {
	avail, err := f.Available(ctx, QueryLatest)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	threshold := len(query) / 2
	local := platform.Local()

	type candidate struct {
		name string
		dist int
	}
	var candidates []candidate
	seen := make(map[string]bool)
	for _, src := range f.sources {
		for _, t := range avail[src] {
			if !local.Match(t.Platform) {
				continue
			}
			lower := strings.ToLower(t.Name)
			dist := levenshtein.Distance(query, lower, nil)
			if dist == 0 {
				return []string{t.Name}, nil
			}
			if dist >= threshold {
				continue
			}
			if seen[lower] {
				continue
			}
			seen[lower] = true
			candidates = append(candidates, candidate{name: t.Name, dist: dist})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names, nil
}
